package httpadapter

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
	"github.com/skinlens/lesion-dashboard/internal/observability/logging"
)

// requestError is an adapter-level failure with a fixed status and message.
type requestError struct {
	status  int
	kind    string
	message string
}

func (e *requestError) Error() string {
	return e.message
}

// statusClientClosedRequest follows the nginx 499 convention for disconnected clients.
const statusClientClosedRequest = 499

var (
	errMethodNotAllowed = &requestError{status: http.StatusMethodNotAllowed, kind: "method_not_allowed", message: "method not allowed"}
	errNotFound         = &requestError{status: http.StatusNotFound, kind: "not_found", message: "page not found"}
	errRateLimited      = &requestError{status: http.StatusTooManyRequests, kind: "rate_limited", message: "too many prediction requests, retry later"}
	errOverloaded       = &requestError{status: http.StatusServiceUnavailable, kind: "overloaded", message: "server is busy, retry later"}
	errUploadTooLarge   = &requestError{status: http.StatusRequestEntityTooLarge, kind: "upload_too_large", message: "uploaded file is too large"}
)

// uploadError carries a message safe to show to the user for a rejected upload.
type uploadError struct {
	message string
}

func (e *uploadError) Error() string {
	return e.message
}

func invalidUpload(message string) error {
	return domain.WrapError(domain.ErrInvalidInput, "upload", &uploadError{message: message})
}

func mapErrorToHTTPStatus(err error) int {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status
	}
	switch {
	case domain.IsKind(err, domain.ErrCanceled):
		return statusClientClosedRequest
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTransport):
		if isTimeout(err) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrServiceFailure),
		domain.IsKind(err, domain.ErrMalformedResponse),
		domain.IsKind(err, domain.ErrUnknownClassLabel):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorKindLabel(err error) string {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.kind
	}
	switch domain.ErrorKind(err) {
	case domain.ErrCanceled:
		return "canceled"
	case domain.ErrInvalidInput:
		return "invalid_input"
	case domain.ErrTemporary:
		return "temporary"
	case domain.ErrTransport:
		return "transport"
	case domain.ErrServiceFailure:
		return "service_failure"
	case domain.ErrMalformedResponse:
		return "malformed_response"
	case domain.ErrUnknownClassLabel:
		return "unknown_class_label"
	default:
		return "internal"
	}
}

// userMessage never exposes upstream details.
func userMessage(err error) string {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.message
	}
	var upErr *uploadError
	if errors.As(err, &upErr) {
		return upErr.message
	}
	switch domain.ErrorKind(err) {
	case domain.ErrCanceled:
		return "the request was canceled"
	case domain.ErrInvalidInput:
		return "the uploaded image could not be processed"
	case domain.ErrTemporary:
		return "the prediction service is temporarily unavailable, try again shortly"
	case domain.ErrTransport:
		return "the prediction service could not be reached"
	case domain.ErrServiceFailure:
		return "failed to get a prediction from the API"
	case domain.ErrMalformedResponse:
		return "the prediction service returned an unexpected response"
	case domain.ErrUnknownClassLabel:
		return "the prediction service returned an unknown diagnosis class"
	default:
		return "internal error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if wantsHTML(r) {
		renderError(w, r, status, userMessage(err))
		return
	}
	writeJSON(w, status, map[string]string{
		"error":      userMessage(err),
		"kind":       errorKindLabel(err),
		"request_id": logging.RequestIDFromContext(r.Context()),
	})
}

func wantsHTML(r *http.Request) bool {
	return !strings.HasPrefix(r.URL.Path, "/v1/")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
