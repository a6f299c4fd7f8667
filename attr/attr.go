// Package attr parses the part and partmap element attributes into
// structured part references.
package attr

import "strings"

// Wildcard is the marker a partmap forwarding name may carry to forward
// every requested part name. Exactly one wildcard per entry is supported:
// substitution replaces the first occurrence and leaves any further one
// in place.
const Wildcard = "*"

// Reference is a single parsed entry of a part or partmap attribute.
//
// A plain part attribute produces references with an empty Forward: the
// element exposes Name to its immediate host scope. A partmap attribute on
// a scope boundary produces forwarding references: Forward is matched
// against part lookups arriving from inside the scope and Name is the name
// the lookup continues under, one scope further out.
type Reference struct {
	Name    string
	Forward string
}

// Forwarding reports whether this reference came from a partmap entry.
func (r Reference) Forwarding() bool {
	return r.Forward != ""
}

// ForwardsFor reports whether this entry applies to a lookup of part.
func (r Reference) ForwardsFor(part string) bool {
	return r.Forward == part || strings.Contains(r.Forward, Wildcard)
}

// Outward returns the name a lookup of part continues under after crossing
// this entry's scope boundary.
func (r Reference) Outward(part string) string {
	if strings.Contains(r.Forward, Wildcard) {
		return strings.Replace(r.Name, Wildcard, part, 1)
	}
	return r.Name
}

// ParseParts parses a part attribute: comma-separated part names. Blank
// entries are dropped.
func ParseParts(value string) []Reference {
	var refs []Reference
	for entry := range strings.SplitSeq(value, ",") {
		if name := strings.TrimSpace(entry); name != "" {
			refs = append(refs, Reference{Name: name})
		}
	}
	return refs
}

// ParsePartmap parses a partmap attribute: comma-separated entries of one
// or two whitespace-separated tokens. Two tokens map an outer-facing name
// to a local one, a single token maps the name to itself. Malformed entries
// are dropped, not reported.
func ParsePartmap(value string) []Reference {
	var refs []Reference
	for entry := range strings.SplitSeq(value, ",") {
		switch tokens := strings.Fields(entry); len(tokens) {
		case 1:
			refs = append(refs, Reference{Name: tokens[0], Forward: tokens[0]})
		case 2:
			refs = append(refs, Reference{Name: tokens[1], Forward: tokens[0]})
		}
	}
	return refs
}
