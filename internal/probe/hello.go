package probe

import "context"

// HelloName is the name of the core probe.
const HelloName = "hello"

// HelloExpected is the only output the hello probe accepts.
const HelloExpected = "Hello, int!\n"

// Hello returns the core probe. In the default build it constructs a
// variant holding the int 2 and formats a greeting from the active
// alternative; in the nodeps build it produces the literal directly.
func Hello() Probe {
	return &Func{
		ProbeName: HelloName,
		Caps:      helloRequires(),
		Want:      HelloExpected,
		Fn: func(ctx context.Context) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return helloOutput()
		},
	}
}

// RunHello runs the hello probe once and asserts its output. It is the
// whole of the capability check with no registry, retries or history.
func RunHello(ctx context.Context) (string, error) {
	p := Hello()
	out, err := p.Run(ctx)
	if err != nil {
		return "", err
	}
	return out, p.Check(out)
}
