package manifest

import (
	"context"

	"github.com/canonica-labs/capprobe/internal/capabilities"
	"github.com/canonica-labs/capprobe/internal/errors"
	"github.com/canonica-labs/capprobe/internal/expect"
	"github.com/canonica-labs/capprobe/internal/probe"
)

// BuildProbes builds one probe per manifest entry.
func (m *Manifest) BuildProbes() ([]probe.Probe, error) {
	out := make([]probe.Probe, 0, len(m.Probes))
	for _, spec := range m.Probes {
		p, err := newProbe(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type greetingProbe struct {
	name     string
	value    Value
	expect   expect.Expectation
	requires []capabilities.Capability
}

func newProbe(spec ProbeSpec) (*greetingProbe, error) {
	var exps []expect.Expectation
	if spec.Equals != nil {
		exps = append(exps, expect.Equals(*spec.Equals))
	}
	if spec.Expr != "" {
		e, err := expect.Expr(spec.Expr)
		switch {
		case errors.Code(err) == errors.CodeDependency:
			// Kept so the runner reports the probe as skipped.
			e = unlinkedExpr(spec.Expr)
		case err != nil:
			return nil, err
		}
		exps = append(exps, e)
	}

	exp := exps[0]
	if len(exps) > 1 {
		exp = expect.All(exps...)
	}

	requires := []capabilities.Capability{capabilities.CapabilityVariant, capabilities.CapabilityFormat}
	requires = append(requires, exp.Requires()...)
	for _, s := range spec.Requires {
		c, err := capabilities.ParseCapability(s)
		if err != nil {
			return nil, errors.NewInvalidManifest("requires", err.Error())
		}
		requires = append(requires, c)
	}

	return &greetingProbe{
		name:     spec.Name,
		value:    spec.Value,
		expect:   exp,
		requires: requires,
	}, nil
}

func (p *greetingProbe) Name() string { return p.name }

func (p *greetingProbe) Requires() []capabilities.Capability { return p.requires }

func (p *greetingProbe) Run(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return greeting(p.value)
}

func (p *greetingProbe) Check(output string) error { return p.expect.Check(p.name, output) }

func (p *greetingProbe) Expected() string { return p.expect.String() }

type unlinkedExpr string

func (e unlinkedExpr) Check(probe, output string) error {
	return errors.NewDependencyUnavailable(capabilities.CapabilityCEL.String(), nil)
}

func (e unlinkedExpr) Requires() []capabilities.Capability {
	return []capabilities.Capability{capabilities.CapabilityCEL}
}

func (e unlinkedExpr) String() string { return "expr: " + string(e) }
