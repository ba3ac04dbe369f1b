//go:build nodeps

package expect

import (
	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
)

// Expr is unavailable without the expression engine.
func Expr(src string) (Expectation, error) {
	return nil, errors.NewDependencyUnavailable(capabilities.CapabilityCEL.String(), nil)
}
