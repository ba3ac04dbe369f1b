// Package variant provides a closed two-alternative sum type.
//
// A Variant[A, B] holds exactly one of an A or a B. The active alternative is
// fixed when the value is constructed; there are no setters. Index reports
// which alternative is held, 0 for A and 1 for B, in declaration order.
package variant

import "fmt"

// Variant holds exactly one of A or B.
// The zero value holds the zero A.
type Variant[A, B any] struct {
	a     A
	b     B
	index int
}

// IntOrBool is the variant exercised by the hello probe.
type IntOrBool = Variant[int, bool]

// First constructs a variant holding the first alternative.
func First[A, B any](a A) Variant[A, B] {
	return Variant[A, B]{a: a, index: 0}
}

// Second constructs a variant holding the second alternative.
func Second[A, B any](b B) Variant[A, B] {
	return Variant[A, B]{b: b, index: 1}
}

// Index returns 0 if the first alternative is active and 1 otherwise.
func (v Variant[A, B]) Index() int {
	return v.index
}

// Get0 returns the first alternative and whether it is active.
func (v Variant[A, B]) Get0() (A, bool) {
	if v.index != 0 {
		var zero A
		return zero, false
	}
	return v.a, true
}

// Get1 returns the second alternative and whether it is active.
func (v Variant[A, B]) Get1() (B, bool) {
	if v.index != 1 {
		var zero B
		return zero, false
	}
	return v.b, true
}

// Value returns the active alternative as an interface value.
func (v Variant[A, B]) Value() any {
	if v.index == 0 {
		return v.a
	}
	return v.b
}

// String renders the variant as variant<index:value>.
func (v Variant[A, B]) String() string {
	return fmt.Sprintf("variant<%d:%v>", v.index, v.Value())
}

// Visit calls exactly one of onA or onB, depending on the active alternative,
// and returns its result.
func Visit[A, B, R any](v Variant[A, B], onA func(A) R, onB func(B) R) R {
	if v.index == 0 {
		return onA(v.a)
	}
	return onB(v.b)
}
