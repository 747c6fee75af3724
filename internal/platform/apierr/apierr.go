package apierr

import (
	"errors"
	"net/http"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
)

// Error is an error ready to be rendered: an HTTP status, a stable code and
// the message shown to the caller.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return http.StatusText(e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// StatusFor maps an engine error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusUnprocessableEntity
	case domainagg.CodePermissionDenied:
		return http.StatusForbidden
	case domainagg.CodeNotFound, domainagg.CodeUnknownYear:
		return http.StatusNotFound
	case domainagg.CodeProposalExists, domainagg.CodeNoProposal, domainagg.CodeIllegalTransition,
		domainagg.CodeInUse, domainagg.CodeConcurrent, domainagg.CodeVersionConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError converts any error into an *Error. Engine errors keep their code
// and message; anything else, and internal failures, become an opaque 500.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	code := domainagg.CodeOf(err)
	if code == "" || code == domainagg.CodeInternal {
		return New(http.StatusInternalServerError, string(domainagg.CodeInternal), errors.New("internal error"))
	}
	return New(StatusFor(code), string(code), errors.New(domainagg.MessageOf(err)))
}
