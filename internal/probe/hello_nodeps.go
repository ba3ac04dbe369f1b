//go:build nodeps

package probe

import "github.com/canonica-labs/capprobe/internal/capabilities"

// BuildMode reports whether this binary links the probed dependencies.
const BuildMode = ModeNoDeps

// helloOutput skips the variant and the formatter entirely.
func helloOutput() (string, error) {
	return "Hello, int!\n", nil
}

func helloRequires() []capabilities.Capability {
	return nil
}
