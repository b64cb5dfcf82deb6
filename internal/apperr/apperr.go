package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Kind groups errors by how they are reported to the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	KindUpstream
)

const CodeInternal = "INTERNAL_ERROR"

// Error is an application error with a stable code and a message that is safe
// to return to clients. Cause is logged, never serialized.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Code, so a sentinel still matches after WithCause or %w wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of e carrying err as its cause.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.Cause = err
	return &cp
}

// WithMessage returns a copy of e with a different client message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Error { return New(KindValidation, code, message) }
func Auth(code, message string) *Error       { return New(KindAuth, code, message) }
func NotFound(code, message string) *Error   { return New(KindNotFound, code, message) }
func Conflict(code, message string) *Error   { return New(KindConflict, code, message) }
func Upstream(code, message string) *Error   { return New(KindUpstream, code, message) }

// Status maps an error kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		// duplicate usernames are reported as a bad request
		return http.StatusBadRequest
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Response is the JSON body written for every error.
type Response struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Write sends err to the client and aborts the gin chain. Errors that are not
// *Error become a generic 500 and are logged with their full chain.
func Write(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
			Error: "Internal server error",
			Code:  CodeInternal,
		})
		return
	}

	status := Status(appErr.Kind)
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithField("code", appErr.Code).Error("Request failed")
	}

	c.AbortWithStatusJSON(status, Response{
		Error: appErr.Message,
		Code:  appErr.Code,
	})
}
