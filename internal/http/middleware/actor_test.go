package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/ctxutil"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

type fakeIdentity struct {
	people map[uint]types.Actor
	err    error
}

func (f fakeIdentity) Resolve(_ context.Context, id uint) (types.Actor, error) {
	if f.err != nil {
		return types.Actor{}, f.err
	}
	a, ok := f.people[id]
	if !ok {
		return types.Actor{}, domainagg.Errorf(domainagg.CodeNotFound, "Identity.Resolve", "person %d not found", id)
	}
	return a, nil
}

func actorRouter(id fakeIdentity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext())
	r.Use(NewActorMiddleware(logger.Nop(), id).RequireActor())
	r.GET("/whoami", func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		rd := ctxutil.GetRequestData(c.Request.Context())
		if !ok || rd == nil || rd.ActorID != actor.ID() || rd.RequestID == "" {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID(), "manager": actor.Manager()})
	})
	return r
}

func TestRequireActor(t *testing.T) {
	id := fakeIdentity{people: map[uint]types.Actor{
		7: {Person: &types.Person{ID: 7}, Roles: []types.Role{types.RoleCentralManager}},
	}}
	cases := []struct {
		name   string
		header string
		ident  fakeIdentity
		status int
	}{
		{"missing", "", id, http.StatusUnauthorized},
		{"garbage", "abc", id, http.StatusUnauthorized},
		{"unknown", "8", id, http.StatusUnauthorized},
		{"resolved", "7", id, http.StatusOK},
		{"store down", "7", fakeIdentity{err: domainagg.Wrap(domainagg.CodeInternal, "op", errors.New("db"))}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set(HeaderActorID, tc.header)
			}
			rec := httptest.NewRecorder()
			actorRouter(tc.ident).ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status=%d want=%d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if rec.Header().Get(headerRequestID) == "" {
				t.Fatalf("expected request id header")
			}
		})
	}
}

func TestAttachRequestContextKeepsIncomingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext())
	r.GET("/", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.RequestID+"|"+rd.TraceID)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerTraceID, "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-1|trace-1" {
		t.Fatalf("body=%q", rec.Body.String())
	}
	if rec.Header().Get(headerTraceID) != "trace-1" {
		t.Fatalf("trace header=%q", rec.Header().Get(headerTraceID))
	}
}

func TestAttachRequestContextReplacesUnusableIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.GetRequestData(c.Request.Context()).RequestID)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, "has space")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Body.String(); got == "" || got == "has space" {
		t.Fatalf("request id=%q", got)
	}
}
