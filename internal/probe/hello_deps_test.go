//go:build !nodeps

package probe

import (
	stderrors "errors"
	"testing"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/variant"
)

func TestGreeting_IntAlternative(t *testing.T) {
	got, err := Greeting(variant.First[int, bool](2))
	if err != nil {
		t.Fatalf("Greeting: %v", err)
	}
	if got != "Hello, int!\n" {
		t.Errorf("got %q", got)
	}
}

func TestGreeting_BoolAlternativeFailsAssertion(t *testing.T) {
	got, err := Greeting(variant.Second[int, bool](true))
	if err != nil {
		t.Fatalf("Greeting: %v", err)
	}
	if got != "Hello, bool!\n" {
		t.Fatalf("got %q", got)
	}

	err = Assert(HelloName, got, HelloExpected)
	var av *errors.AssertionViolation
	if !stderrors.As(err, &av) {
		t.Fatalf("expected AssertionViolation, got %v", err)
	}
	if av.Got != "Hello, bool!\n" || av.Want != HelloExpected {
		t.Errorf("violation = got %q want %q", av.Got, av.Want)
	}
}

func TestGreeting_IgnoresHeldValue(t *testing.T) {
	// Only the tag selects the word.
	for _, n := range []int{0, 2, -7} {
		got, err := Greeting(variant.First[int, bool](n))
		if err != nil {
			t.Fatalf("Greeting(%d): %v", n, err)
		}
		if got != HelloExpected {
			t.Errorf("Greeting(%d) = %q", n, got)
		}
	}
}

func TestDepsBuild_LinksVariantAndFormat(t *testing.T) {
	if BuildMode != ModeDeps {
		t.Fatalf("BuildMode = %q", BuildMode)
	}
	for _, c := range []capabilities.Capability{capabilities.CapabilityVariant, capabilities.CapabilityFormat} {
		if !capabilities.IsLinked(c) {
			t.Errorf("%s not linked", c)
		}
	}
	if len(Hello().Requires()) != 2 {
		t.Errorf("hello requires %v", Hello().Requires())
	}
}
