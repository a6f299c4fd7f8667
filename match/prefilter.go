// Package match implements the static pre-filter applied to part rule
// selectors before the real selector-matching primitive is consulted.
package match

import "strings"

// AllClasses marks every class name of a scope type as constant.
const AllClasses = "*"

// Hints describe what a scope type guarantees about its instances: class
// names present on every instance for its whole lifetime, and attribute
// names whose presence never changes once the element exists. The zero
// value guarantees nothing and prunes nothing.
type Hints struct {
	ConstantClasses []string
	ConstantAttrs   []string
}

func (h Hints) constantClass(name string) bool {
	for _, c := range h.ConstantClasses {
		if c == AllClasses || c == name {
			return true
		}
	}
	return false
}

func (h Hints) constantAttr(name string) bool {
	for _, a := range h.ConstantAttrs {
		if a == name {
			return true
		}
	}
	return false
}

// Prune strips from the selector's last simple-selector cluster every
// component the hints guarantee to hold: classes and pseudo components
// named as constant classes and presence-only attribute components named as
// constant attributes. All other components and all preceding clusters stay
// untouched. The second result is true when pruning reduced the whole
// selector to a trivial match (empty or bare universal), in which case no
// real match is needed.
//
// The filter may keep a component it could have stripped, never the other
// way around: an unexpected shape resolves to "ask the real matcher".
func Prune(selector string, h Hints) (string, bool) {
	selector = strings.TrimSpace(selector)
	if selector == "" || selector == "*" {
		return "*", true
	}

	head, last := splitLastCluster(selector)

	var out strings.Builder
	for _, comp := range Components(last) {
		if !h.prunable(comp) {
			out.WriteString(comp)
		}
	}
	pruned := out.String()

	if head == "" {
		if pruned == "" || pruned == "*" {
			return "*", true
		}
		return pruned, false
	}
	if pruned == "" {
		pruned = "*"
	}
	return head + pruned, false
}

// prunable reports whether one simple-selector component is safe to strip.
func (h Hints) prunable(comp string) bool {
	switch {
	case strings.HasPrefix(comp, "::"):
		return h.constantClass(comp[2:])
	case strings.HasPrefix(comp, ":"):
		if strings.IndexByte(comp, '(') >= 0 {
			return false // functional pseudo, keep for the real matcher
		}
		return h.constantClass(comp[1:])
	case strings.HasPrefix(comp, "."):
		return h.constantClass(comp[1:])
	case strings.HasPrefix(comp, "["):
		inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(comp, "["), "]"))
		if inner == "" || strings.ContainsAny(inner, "=~|^$*") {
			return false // not a plain presence test
		}
		return h.constantAttr(inner)
	default:
		return false // tag or id component
	}
}

// splitLastCluster splits a selector at its final top-level combinator.
// head keeps the trailing combinator so head+cluster reassembles the
// selector.
func splitLastCluster(s string) (head, last string) {
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
			}
		case ' ', '\t', '>', '+', '~':
			if depth == 0 {
				start = i + 1
			}
		}
	}
	return s[:start], s[start:]
}

// Components splits one simple-selector cluster into its components: an
// optional leading tag or universal selector followed by class, id, pseudo
// and attribute components. Brackets and parentheses are honored; anything
// unbalanced ends up in the final component.
func Components(cluster string) []string {
	var comps []string
	for i := 0; i < len(cluster); {
		j := componentEnd(cluster, i)
		comps = append(comps, cluster[i:j])
		i = j
	}
	return comps
}

// componentEnd returns the end index of the component starting at i.
func componentEnd(s string, i int) int {
	if s[i] == '[' {
		depth := 1
		for j := i + 1; j < len(s); j++ {
			switch s[j] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return j + 1
				}
			}
		}
		return len(s)
	}

	j := i + 1
	if s[i] == ':' && j < len(s) && s[j] == ':' {
		j++ // pseudo-element marker
	}
	depth := 0
	for ; j < len(s); j++ {
		switch s[j] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '.', ':', '#', '[':
			if depth == 0 {
				return j
			}
		}
	}
	return j
}
