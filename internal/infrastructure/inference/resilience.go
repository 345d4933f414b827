package inference

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
	"github.com/skinlens/lesion-dashboard/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "inference status error"
	}
	return fmt.Sprintf("inference %s status: %s", e.Operation, e.Status)
}

// StatusCode extracts the upstream HTTP status from err, if any.
func StatusCode(err error) (int, bool) {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}

// IsTimeout reports whether err came from the request deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func classifyInferenceError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{}
	}
	if domain.IsKind(err, domain.ErrInvalidInput) {
		return resilience.ErrorClassification{}
	}

	if code, ok := StatusCode(err); ok {
		if isRetryableHTTPStatus(code) {
			return resilience.ErrorClassification{
				Retryable:     true,
				RecordFailure: true,
			}
		}
		return resilience.ErrorClassification{}
	}

	if domain.IsKind(err, domain.ErrTransport) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     false,
		RecordFailure: true,
	}
}

func ensureKind(err error) error {
	if err == nil {
		return nil
	}
	if domain.ErrorKind(err) != nil {
		return err
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, "classify", err)
	}
	return domain.WrapError(domain.ErrTransport, "classify", err)
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
