package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestDefaultConfigMakesSingleAttempt(t *testing.T) {
	exec := NewExecutor(Config{BreakerEnabled: false})

	attempts := 0
	errTemp := errors.New("upstream unavailable")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errTemp
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	if !errors.Is(err, errTemp) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt with default config, got %d", attempts)
	}
}

func TestExecuteRetriesWhenConfigured(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{
			Retryable:     errors.Is(err, errTemp),
			RecordFailure: true,
		}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	var transitions []gobreaker.State
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}, func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	})

	errTemp := errors.New("temporary")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			return errTemp
		}, classifier)
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, classifier)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if exec.State("op") != gobreaker.StateOpen {
		t.Fatalf("expected open state, got %s", exec.State("op"))
	}
	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Fatalf("expected one transition to open, got %v", transitions)
	}
}

func TestStateOfUnknownOperationIsClosed(t *testing.T) {
	exec := NewExecutor(DefaultConfig())
	if exec.State("never-called") != gobreaker.StateClosed {
		t.Fatalf("expected closed state")
	}
}

func TestExecuteReturnsContextErrorBeforeFirstAttempt(t *testing.T) {
	exec := NewExecutor(Config{BreakerEnabled: false})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := exec.Execute(ctx, "op", func(context.Context) error {
		t.Fatalf("operation must not run with cancelled context")
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
