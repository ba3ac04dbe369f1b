// Package expect holds the checks a manifest probe applies to its output.
package expect

import (
	"strings"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
)

// Expectation checks a probe's output.
type Expectation interface {
	// Check returns an *errors.AssertionViolation when output does not
	// satisfy the expectation.
	Check(probe, output string) error

	// Requires returns the capabilities needed to evaluate the check.
	Requires() []capabilities.Capability

	// String describes the expectation for reports.
	String() string
}

type equals struct {
	want string
}

// Equals expects output to equal want byte for byte.
func Equals(want string) Expectation {
	return equals{want: want}
}

func (e equals) Check(probe, output string) error {
	if output != e.want {
		return errors.NewAssertionViolation(probe, output, e.want)
	}
	return nil
}

func (e equals) Requires() []capabilities.Capability { return nil }

func (e equals) String() string { return e.want }

// All combines expectations. The first violation wins.
func All(exps ...Expectation) Expectation {
	return all(exps)
}

type all []Expectation

func (a all) Check(probe, output string) error {
	for _, e := range a {
		if err := e.Check(probe, output); err != nil {
			return err
		}
	}
	return nil
}

func (a all) Requires() []capabilities.Capability {
	var caps []capabilities.Capability
	for _, e := range a {
		caps = append(caps, e.Requires()...)
	}
	return caps
}

func (a all) String() string {
	parts := make([]string, len(a))
	for i, e := range a {
		parts[i] = e.String()
	}
	return strings.Join(parts, " && ")
}
