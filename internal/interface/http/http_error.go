package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/dreamvision/internal/domain/auth"
	"github.com/yanqian/dreamvision/internal/domain/dream"
	apperrors "github.com/yanqian/dreamvision/pkg/errors"
)

// HTTPError carries the status and public code of a failed request.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the service error for errors.Is/As.
func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError builds an HTTPError.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusClientClosedRequest is the nginx convention for a client that went
// away before the response was ready.
const statusClientClosedRequest = 499

var codeStatus = map[string]int{
	dream.CodeInvalidInput:       http.StatusBadRequest,
	dream.CodeNotFound:           http.StatusNotFound,
	dream.CodeEntitlementDenied:  http.StatusForbidden,
	dream.CodeAlreadyInterpreted: http.StatusConflict,
	dream.CodeCancelled:          statusClientClosedRequest,
	dream.CodeDreamError:         http.StatusInternalServerError,
	auth.CodeEmailExists:         http.StatusConflict,
	auth.CodeInvalidCredentials:  http.StatusUnauthorized,
	auth.CodeInvalidToken:        http.StatusUnauthorized,
	auth.CodeUserNotFound:        http.StatusNotFound,
	auth.CodeAuthError:           http.StatusInternalServerError,
}

// domainError translates a service error into its transport representation.
// Unknown codes are reported as internal errors without leaking the message.
func domainError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	status, ok := codeStatus[code]
	if !ok {
		return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
	}
	return NewHTTPError(status, code, apperrors.MessageOf(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return domainError(err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
