//go:build !nodeps

package expect

import (
	stderrors "errors"
	"testing"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
)

func TestExpr_Evaluates(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		output    string
		violation bool
	}{
		{"prefix match", `output.startsWith("Hello, int")`, "Hello, int!\n", false},
		{"prefix mismatch", `output.startsWith("Hello, int")`, "Hello, bool!\n", true},
		{"size", `size(output) == 12`, "Hello, int!\n", false},
		{"contains", `output.contains("bool")`, "Hello, int!\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Expr(tt.src)
			if err != nil {
				t.Fatalf("Expr: %v", err)
			}
			err = e.Check("p", tt.output)
			if tt.violation != errors.IsAssertion(err) {
				t.Errorf("Check(%q) = %v, violation want %v", tt.output, err, tt.violation)
			}
		})
	}
}

func TestExpr_RejectsNonBool(t *testing.T) {
	_, err := Expr(`size(output)`)
	var im *errors.ErrInvalidManifest
	if !stderrors.As(err, &im) {
		t.Fatalf("expected ErrInvalidManifest, got %v", err)
	}
}

func TestExpr_RejectsSyntaxErrors(t *testing.T) {
	if _, err := Expr(`output.startsWith(`); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestExpr_RequiresCEL(t *testing.T) {
	e, err := Expr(`true`)
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Requires(); len(got) != 1 || got[0] != capabilities.CapabilityCEL {
		t.Errorf("Requires = %v", got)
	}
	if !capabilities.IsLinked(capabilities.CapabilityCEL) {
		t.Error("CEL not linked")
	}
}
