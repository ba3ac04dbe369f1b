//go:build !nodeps

package manifest

import (
	"github.com/canonica-labs/capprobe/internal/probe"
	"github.com/canonica-labs/capprobe/internal/variant"
)

func greeting(v Value) (string, error) {
	if v.Int != nil {
		return probe.Greeting(variant.First[int, bool](*v.Int))
	}
	return probe.Greeting(variant.Second[int, bool](*v.Bool))
}
