package probe

import (
	"context"
	"testing"

	"github.com/canonica-labs/capprobe/internal/errors"
)

func TestAssert_Mismatch(t *testing.T) {
	err := Assert("hello", "Hello, bool!\n", HelloExpected)
	if err == nil {
		t.Fatal("expected assertion violation")
	}
	if !errors.IsAssertion(err) {
		t.Fatalf("expected AssertionViolation, got %T", err)
	}
	if got := errors.ExitCode(err); got != 1 {
		t.Errorf("ExitCode = %d, want 1", got)
	}
}

func TestAssert_Equal(t *testing.T) {
	if err := Assert("hello", HelloExpected, HelloExpected); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAssert_NoNormalization(t *testing.T) {
	// Trailing newline is part of the expectation.
	if err := Assert("hello", "Hello, int!", HelloExpected); err == nil {
		t.Fatal("expected violation for missing newline")
	}
}

func TestRunHello_Passes(t *testing.T) {
	out, err := RunHello(context.Background())
	if err != nil {
		t.Fatalf("RunHello: %v", err)
	}
	if out != HelloExpected {
		t.Errorf("output = %q, want %q", out, HelloExpected)
	}
}

func TestRunHello_Idempotent(t *testing.T) {
	first, err := RunHello(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := RunHello(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Errorf("runs differ: %q vs %q", first, second)
	}
}

func TestRunHello_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunHello(ctx); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestFunc_Expected(t *testing.T) {
	p := Hello()
	if p.Name() != HelloName {
		t.Errorf("Name = %q", p.Name())
	}
	if p.Expected() != HelloExpected {
		t.Errorf("Expected = %q", p.Expected())
	}
}
