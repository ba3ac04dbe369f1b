//go:build !nodeps

package expect

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
)

// costLimit stops runaway expressions.
const costLimit = 100000

func init() {
	capabilities.MarkLinked(capabilities.CapabilityCEL)
}

type expr struct {
	src  string
	prog cel.Program
}

// Expr compiles a CEL expression over the string variable output. The
// expression must evaluate to a bool.
func Expr(src string) (Expectation, error) {
	env, err := cel.NewEnv(cel.Variable("output", cel.StringType))
	if err != nil {
		return nil, fmt.Errorf("expect: cel environment: %w", err)
	}

	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, errors.NewInvalidManifest("expr", issues.Err().Error())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.NewInvalidManifest("expr",
			fmt.Sprintf("expression must return bool, got %s", ast.OutputType()))
	}

	prog, err := env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("expect: cel program: %w", err)
	}
	return &expr{src: src, prog: prog}, nil
}

func (e *expr) Check(probe, output string) error {
	out, _, err := e.prog.Eval(map[string]any{"output": output})
	if err != nil {
		return fmt.Errorf("expect: evaluate %q: %w", e.src, err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return fmt.Errorf("expect: %q returned %T, want bool", e.src, out.Value())
	}
	if !ok {
		return errors.NewAssertionViolation(probe, output, e.String())
	}
	return nil
}

func (e *expr) Requires() []capabilities.Capability {
	return []capabilities.Capability{capabilities.CapabilityCEL}
}

func (e *expr) String() string {
	return "expr: " + e.src
}
