package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrTransport         = errors.New("transport failure")
	ErrServiceFailure    = errors.New("service failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnknownClassLabel = errors.New("unknown class label")
	ErrTemporary         = errors.New("temporary failure")
	ErrCanceled          = errors.New("request canceled")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ErrorKind returns the first known kind carried by err, or nil.
func ErrorKind(err error) error {
	for _, kind := range []error{
		ErrCanceled,
		ErrInvalidInput,
		ErrTemporary,
		ErrTransport,
		ErrServiceFailure,
		ErrMalformedResponse,
		ErrUnknownClassLabel,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
