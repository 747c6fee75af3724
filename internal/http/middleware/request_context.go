package middleware

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/osisteam/catalogue-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxIncomingIDLen = 128
)

// AttachRequestContext seeds ctxutil.RequestData with a request id and a
// trace id and echoes both on the response. An active span wins over the
// X-Trace-Id header; unusable incoming ids are replaced.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := incomingID(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		traceID := ""
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		}
		if traceID == "" {
			traceID = incomingID(c.GetHeader(headerTraceID))
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			RequestID: reqID,
			TraceID:   traceID,
		}))
		c.Header(headerRequestID, reqID)
		c.Header(headerTraceID, traceID)
		c.Next()
	}
}

func incomingID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxIncomingIDLen {
		return ""
	}
	for _, r := range raw {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return ""
		}
	}
	return raw
}
