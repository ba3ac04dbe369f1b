//go:build !nodeps

package probe

import (
	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/format"
	"github.com/canonica-labs/capprobe/internal/variant"
)

// BuildMode reports whether this binary links the probed dependencies.
const BuildMode = ModeDeps

func init() {
	capabilities.MarkLinked(capabilities.CapabilityVariant)
	capabilities.MarkLinked(capabilities.CapabilityFormat)
}

// Greeting derives the greeting for the active alternative of v:
// "Hello, int!\n" for the int alternative, "Hello, bool!\n" otherwise.
func Greeting(v variant.IntOrBool) (string, error) {
	if v.Index() == 0 {
		return format.Format("Hello, {}!\n", "int")
	}
	return format.Format("Hello, {}!\n", "bool")
}

func helloOutput() (string, error) {
	v := variant.First[int, bool](2)
	return Greeting(v)
}

func helloRequires() []capabilities.Capability {
	return []capabilities.Capability{
		capabilities.CapabilityVariant,
		capabilities.CapabilityFormat,
	}
}
