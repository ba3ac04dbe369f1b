//go:build nodeps

package manifest

import (
	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
)

// greeting needs the variant and the formatter, neither linked here.
func greeting(Value) (string, error) {
	return "", errors.NewDependencyUnavailable(capabilities.CapabilityVariant.String(), nil)
}
