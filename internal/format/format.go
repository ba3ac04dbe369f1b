// Package format provides brace-template string formatting.
//
// Templates use {} for the next argument and {N} for the N-th argument
// (zero-based). {{ and }} produce literal braces. Automatic and manual
// indexing cannot be mixed in one template. Arguments that are not used are
// ignored.
//
//	s, err := format.Format("Hello, {}!\n", "int") // "Hello, int!\n"
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Error describes a malformed template or an argument mismatch.
type Error struct {
	Template string
	Offset   int
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("format: %s at offset %d in %q", e.Reason, e.Offset, e.Template)
}

type indexing int

const (
	indexingUnset indexing = iota
	indexingAuto
	indexingManual
)

// Format renders tmpl with args.
func Format(tmpl string, args ...any) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	mode := indexingUnset
	next := 0

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", &Error{Template: tmpl, Offset: i, Reason: "unmatched '{'"}
			}
			field := tmpl[i+1 : i+1+end]

			var idx int
			if field == "" {
				if mode == indexingManual {
					return "", &Error{Template: tmpl, Offset: i, Reason: "cannot switch from manual to automatic indexing"}
				}
				mode = indexingAuto
				idx = next
				next++
			} else {
				if mode == indexingAuto {
					return "", &Error{Template: tmpl, Offset: i, Reason: "cannot switch from automatic to manual indexing"}
				}
				n, err := strconv.Atoi(field)
				if err != nil || n < 0 {
					return "", &Error{Template: tmpl, Offset: i, Reason: fmt.Sprintf("invalid argument index %q", field)}
				}
				mode = indexingManual
				idx = n
			}

			if idx >= len(args) {
				return "", &Error{Template: tmpl, Offset: i, Reason: fmt.Sprintf("argument %d not provided", idx)}
			}
			fmt.Fprint(&b, args[idx])
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", &Error{Template: tmpl, Offset: i, Reason: "unmatched '}'"}
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// Must is like Format but panics on a malformed template. Use it only with
// constant templates.
func Must(tmpl string, args ...any) string {
	s, err := Format(tmpl, args...)
	if err != nil {
		panic(err)
	}
	return s
}
