//go:build nodeps

package manifest

import (
	"context"
	"testing"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
)

func TestProbes_NoDepsBuildGatesEverything(t *testing.T) {
	m, err := Parse([]byte("version: 1\nprobes:\n  - {name: a, value: {int: 1}, expr: 'true'}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	probes, err := m.BuildProbes()
	if err != nil {
		t.Fatalf("Probes: %v", err)
	}

	p := probes[0]
	missing := capabilities.Linked().Missing(p.Requires())
	if len(missing) != 3 {
		t.Errorf("missing = %v, want VARIANT, FORMAT and CEL", missing)
	}
	if _, err := p.Run(context.Background()); errors.Code(err) != errors.CodeDependency {
		t.Errorf("Run error = %v", err)
	}
}
