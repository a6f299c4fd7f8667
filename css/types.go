package css

import (
	"fmt"
	"strings"
	"unicode"
)

// Property is one declared CSS property. Declaration order is significant,
// so properties are kept as a slice rather than a map.
type Property struct {
	Name  string
	Value string
}

// Declaration captures a single ::part or ::theme rule of one scope's
// stylesheet. Declarations are immutable once produced and belong to
// exactly one scope.
type Declaration struct {
	Name        string     // part name the rule targets
	Selector    string     // selector preceding the pseudo-function, may be empty
	EndSelector string     // compound fragment trailing the pseudo-function, may be empty
	Properties  []Property // declared properties in source order
	Theme       bool       // true for ::theme rules
}

// Property returns the effective value for name, honoring last-write-wins
// declaration order.
func (d Declaration) Property(name string) (string, bool) {
	for i := len(d.Properties) - 1; i >= 0; i-- {
		if d.Properties[i].Name == name {
			return d.Properties[i].Value, true
		}
	}
	return "", false
}

// PropName derives the custom-property name carrying a part style across a
// scope boundary. The derivation is pure: the same (scope id, part,
// property, end selector) tuple always yields the same name, and every
// place that synthesizes such a name goes through this function.
func PropName(scopeID int64, part, prop, endSelector string) string {
	name := fmt.Sprintf("--e%d-part-%s-%s", scopeID, part, prop)
	if sfx := sanitizeSuffix(endSelector); sfx != "" {
		name += "-" + sfx
	}
	return name
}

// PropRef returns the var() reference for PropName of the same tuple.
func PropRef(scopeID int64, part, prop, endSelector string) string {
	return "var(" + PropName(scopeID, part, prop, endSelector) + ")"
}

// sanitizeSuffix turns an end-selector fragment into a custom-property name
// segment: runs of runes outside [letter digit _ -] collapse to a single
// dash, edges are trimmed.
func sanitizeSuffix(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, s)
	for strings.Contains(mapped, "--") {
		mapped = strings.ReplaceAll(mapped, "--", "-")
	}
	return strings.Trim(mapped, "-")
}
