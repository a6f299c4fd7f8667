package dom

import (
	"slices"
	"strings"

	"github.com/beevik/etree"

	"partcss/match"
)

// matchSelector reports whether el matches a single, non-grouped selector.
// Supported: tags, *, .class, #id, [attr], [attr=v], [attr~=v], descendant
// and > combinators. Stateful pseudo components never match: a static tree
// has no interaction state to satisfy them.
func matchSelector(el *etree.Element, selector string) bool {
	clusters, combs, ok := splitClusters(selector)
	if !ok {
		return false
	}
	last := len(clusters) - 1
	if !matchCluster(el, clusters[last]) {
		return false
	}
	return matchUp(el.Parent(), clusters[:last], combs)
}

// splitClusters breaks a selector into simple-selector clusters. combs[i]
// is the combinator between clusters[i] and clusters[i+1].
func splitClusters(s string) (clusters []string, combs []byte, ok bool) {
	s = strings.ReplaceAll(s, ">", " > ")
	var comb byte
	for _, f := range strings.Fields(s) {
		switch f {
		case ">":
			if len(clusters) == 0 || comb != 0 {
				return nil, nil, false
			}
			comb = '>'
		case "+", "~":
			return nil, nil, false // sibling combinators unsupported
		default:
			if len(clusters) > 0 {
				if comb == 0 {
					comb = ' '
				}
				combs = append(combs, comb)
			}
			clusters = append(clusters, f)
			comb = 0
		}
	}
	return clusters, combs, comb == 0 && len(clusters) > 0
}

// matchUp matches the remaining clusters against ancestors of parent.
// combs[k] is the combinator to the right of clusters[k].
func matchUp(parent *etree.Element, clusters []string, combs []byte) bool {
	if len(clusters) == 0 {
		return true
	}
	k := len(clusters) - 1
	if combs[k] == '>' {
		if parent == nil || !matchCluster(parent, clusters[k]) {
			return false
		}
		return matchUp(parent.Parent(), clusters[:k], combs[:k])
	}
	for p := parent; p != nil; p = p.Parent() {
		if matchCluster(p, clusters[k]) && matchUp(p.Parent(), clusters[:k], combs[:k]) {
			return true
		}
	}
	return false
}

func matchCluster(el *etree.Element, cluster string) bool {
	for _, comp := range match.Components(cluster) {
		if !matchComponent(el, comp) {
			return false
		}
	}
	return true
}

func matchComponent(el *etree.Element, comp string) bool {
	switch {
	case comp == "*":
		return true
	case strings.HasPrefix(comp, "."):
		return hasClass(el, comp[1:])
	case strings.HasPrefix(comp, "#"):
		return el.SelectAttrValue("id", "") == comp[1:]
	case strings.HasPrefix(comp, "["):
		return matchAttr(el, strings.TrimSuffix(strings.TrimPrefix(comp, "["), "]"))
	case strings.HasPrefix(comp, ":"):
		return false
	default:
		return strings.EqualFold(el.Tag, comp)
	}
}

func hasClass(el *etree.Element, class string) bool {
	return slices.Contains(strings.Fields(el.SelectAttrValue("class", "")), class)
}

// matchAttr evaluates one attribute test: presence, exact value, or
// whitespace-list membership (~=).
func matchAttr(el *etree.Element, expr string) bool {
	expr = strings.TrimSpace(expr)
	name, rest, found := strings.Cut(expr, "=")
	if !found {
		return el.SelectAttr(expr) != nil
	}

	var listMatch bool
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, "~") {
		listMatch = true
		name = strings.TrimSpace(strings.TrimSuffix(name, "~"))
	}

	a := el.SelectAttr(name)
	if a == nil {
		return false
	}
	val := unquote(strings.TrimSpace(rest))
	if listMatch {
		return slices.Contains(strings.Fields(a.Value), val)
	}
	return a.Value == val
}

// unquote removes surrounding quotes from an attribute value.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
