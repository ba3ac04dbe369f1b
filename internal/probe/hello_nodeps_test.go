//go:build nodeps

package probe

import (
	"context"
	"testing"

	"github.com/canonica-labs/capprobe/internal/capabilities"
)

func TestNoDepsBuild_HardcodedOutput(t *testing.T) {
	if BuildMode != ModeNoDeps {
		t.Fatalf("BuildMode = %q", BuildMode)
	}
	out, err := RunHello(context.Background())
	if err != nil {
		t.Fatalf("RunHello: %v", err)
	}
	if out != HelloExpected {
		t.Errorf("output = %q", out)
	}
}

func TestNoDepsBuild_LinksNothing(t *testing.T) {
	if capabilities.IsLinked(capabilities.CapabilityVariant) {
		t.Error("variant linked in nodeps build")
	}
	if capabilities.IsLinked(capabilities.CapabilityFormat) {
		t.Error("format linked in nodeps build")
	}
	if len(Hello().Requires()) != 0 {
		t.Errorf("hello requires %v", Hello().Requires())
	}
}
