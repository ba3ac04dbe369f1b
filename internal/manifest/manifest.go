// Package manifest loads user-declared greeting probes from YAML.
//
// A manifest lists variant values and what their greeting must look like:
//
//	version: 1
//	probes:
//	  - name: hello-bool
//	    value: { bool: true }
//	    equals: "Hello, bool!\n"
//	  - name: hello-int-expr
//	    value: { int: 7 }
//	    expr: 'output.startsWith("Hello, int")'
package manifest

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
)

// Version is the only manifest version understood.
const Version = 1

// Manifest is a parsed probe manifest.
type Manifest struct {
	Version int         `yaml:"version"`
	Probes  []ProbeSpec `yaml:"probes"`
}

// ProbeSpec declares one greeting probe.
type ProbeSpec struct {
	Name   string  `yaml:"name"`
	Value  Value   `yaml:"value"`
	Equals *string `yaml:"equals,omitempty"`
	Expr   string  `yaml:"expr,omitempty"`

	// Requires lists extra capabilities that gate the probe.
	Requires []string `yaml:"requires,omitempty"`
}

// Value is the variant value a probe greets. Exactly one field is set.
type Value struct {
	Int  *int  `yaml:"int,omitempty"`
	Bool *bool `yaml:"bool,omitempty"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInvalidManifest("path", fmt.Sprintf("cannot read %s: %v", path, err))
	}
	return Parse(data)
}

// Parse decodes and validates manifest YAML. Unknown keys at any depth are
// rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.NewInvalidManifest("yaml", err.Error())
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the version, names, values and expectations.
func (m *Manifest) Validate() error {
	if m.Version != Version {
		return errors.NewInvalidManifest("version", fmt.Sprintf("must be %d, got %d", Version, m.Version))
	}

	seen := make(map[string]bool, len(m.Probes))
	for i, p := range m.Probes {
		field := fmt.Sprintf("probes[%d]", i)
		if p.Name == "" {
			return errors.NewInvalidManifest(field+".name", "is required")
		}
		if seen[p.Name] {
			return errors.NewInvalidManifest(field+".name", fmt.Sprintf("duplicate name %q", p.Name))
		}
		seen[p.Name] = true

		if (p.Value.Int == nil) == (p.Value.Bool == nil) {
			return errors.NewInvalidManifest(field+".value", "exactly one of int or bool must be set")
		}
		if p.Equals == nil && p.Expr == "" {
			return errors.NewInvalidManifest(field, "at least one of equals or expr is required")
		}
		for _, c := range p.Requires {
			if _, err := capabilities.ParseCapability(c); err != nil {
				return errors.NewInvalidManifest(field+".requires", err.Error())
			}
		}
	}
	return nil
}

// String renders the active alternative as type(value), e.g. int(2).
func (v Value) String() string {
	if v.Int != nil {
		return fmt.Sprintf("int(%d)", *v.Int)
	}
	if v.Bool != nil {
		return fmt.Sprintf("bool(%t)", *v.Bool)
	}
	return "<unset>"
}
