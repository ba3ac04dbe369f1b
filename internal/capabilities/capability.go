// Package capabilities defines the capability model for probes.
// A capability names an external collaborator a probe relies on: the variant
// type, the formatter, a database driver, a parser. A build links some set of
// capabilities; probes that need an unlinked capability are skipped.
package capabilities

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Capability names a collaborator that a build may or may not link.
type Capability string

const (
	// CapabilityVariant is the two-alternative tagged value.
	CapabilityVariant Capability = "VARIANT"

	// CapabilityFormat is the brace-template formatter.
	CapabilityFormat Capability = "FORMAT"

	CapabilitySQLite    Capability = "SQLITE"
	CapabilityPostgres  Capability = "POSTGRES"
	CapabilityTrino     Capability = "TRINO"
	CapabilitySnowflake Capability = "SNOWFLAKE"
	CapabilityBigQuery  Capability = "BIGQUERY"
	CapabilityDuckDB    Capability = "DUCKDB"
	CapabilitySQLParser Capability = "SQLPARSER"

	// CapabilityCEL is the expression engine behind manifest expr checks.
	CapabilityCEL Capability = "CEL"
)

// AllCapabilities returns all valid capabilities.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityVariant,
		CapabilityFormat,
		CapabilitySQLite,
		CapabilityPostgres,
		CapabilityTrino,
		CapabilitySnowflake,
		CapabilityBigQuery,
		CapabilityDuckDB,
		CapabilitySQLParser,
		CapabilityCEL,
	}
}

// IsValid checks if the capability is a known valid capability.
func (c Capability) IsValid() bool {
	for _, valid := range AllCapabilities() {
		if c == valid {
			return true
		}
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability parses a string into a Capability.
// Returns an error if the string is not a valid capability.
func ParseCapability(s string) (Capability, error) {
	c := Capability(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid capability: %s (valid: %v)", s, AllCapabilities())
	}
	return c, nil
}

// CapabilitySet is a set of capabilities for efficient lookup.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet creates a new CapabilitySet from a slice of capabilities.
func NewCapabilitySet(caps []Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Has checks if the set contains the given capability.
func (cs CapabilitySet) Has(c Capability) bool {
	_, ok := cs[c]
	return ok
}

// Add adds a capability to the set.
func (cs CapabilitySet) Add(c Capability) {
	cs[c] = struct{}{}
}

// Slice returns the capabilities as a sorted slice.
func (cs CapabilitySet) Slice() []Capability {
	result := make([]Capability, 0, len(cs))
	for c := range cs {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Missing returns the capabilities in required that cs does not contain,
// in the order given.
func (cs CapabilitySet) Missing(required []Capability) []Capability {
	var missing []Capability
	for _, c := range required {
		if !cs.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

var (
	linkedMu sync.RWMutex
	linked   = CapabilitySet{}
)

// MarkLinked records that the current build links c. It is called from init
// functions in build-tagged files.
func MarkLinked(c Capability) {
	linkedMu.Lock()
	defer linkedMu.Unlock()
	linked.Add(c)
}

// Linked returns a copy of the capabilities linked into this build.
func Linked() CapabilitySet {
	linkedMu.RLock()
	defer linkedMu.RUnlock()
	out := make(CapabilitySet, len(linked))
	for c := range linked {
		out[c] = struct{}{}
	}
	return out
}

// IsLinked reports whether c is linked into this build.
func IsLinked(c Capability) bool {
	linkedMu.RLock()
	defer linkedMu.RUnlock()
	return linked.Has(c)
}
