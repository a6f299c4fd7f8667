// Package css rewrites ::part and ::theme rules of a scope's stylesheet
// into custom-property rules and structured part declarations.
package css

import (
	"fmt"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// partRulePattern extracts the rule shape
//
//	<prefix>::part(<name>)<suffix> { <declarations> }
//
// and the ::theme variant. This is a deliberately permissive extraction:
// prefix and suffix are treated as opaque selector fragments for the real
// matcher, not parsed here.
var partRulePattern = regexp.MustCompile(`([^{}]*?)::(part|theme)\(\s*([^)]*?)\s*\)([^{]*)\{([^}]*)\}`)

// Transformer rewrites part rules of scope stylesheets. It is stateless
// apart from instrumentation; memoizing results per scope is the caller's
// responsibility (see the scope registry).
type Transformer struct {
	log   *zap.Logger
	scans int
}

// NewTransformer creates a new part rule transformer.
func NewTransformer(log *zap.Logger) *Transformer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transformer{log: log.Named("part-rules")}
}

// Result is the outcome of one transformation pass. Found is false when the
// style text contained no part rules at all; CSS then equals the input.
type Result struct {
	CSS   string
	Decls []Declaration
	Found bool
}

// Scans returns how many times Transform actually ran. Scope caching is
// required to keep this at one per scope; tests observe it.
func (t *Transformer) Scans() int {
	return t.scans
}

// Transform extracts every ::part/::theme rule from cssText and replaces it
// with a rule on the prefix selector that assigns one custom property per
// declared property, named for the given scope id. The input is never
// mutated; the rewritten text is returned.
func (t *Transformer) Transform(scopeID int64, cssText string) Result {
	t.scans++

	matches := partRulePattern.FindAllStringSubmatchIndex(cssText, -1)
	if len(matches) == 0 {
		return Result{CSS: cssText}
	}

	var (
		out   strings.Builder
		decls []Declaration
		last  int
	)
	for _, m := range matches {
		out.WriteString(cssText[last:m[0]])
		last = m[1]

		d := Declaration{
			Selector:    strings.TrimSpace(cssText[m[2]:m[3]]),
			Theme:       cssText[m[4]:m[5]] == "theme",
			Name:        cssText[m[6]:m[7]],
			EndSelector: strings.TrimSpace(cssText[m[8]:m[9]]),
			Properties:  t.parseBlock(cssText[m[10]:m[11]]),
		}
		if d.Name == "" || len(d.Properties) == 0 {
			t.log.Debug("Dropping unusable part rule", zap.String("rule", strings.TrimSpace(cssText[m[0]:m[1]])))
			continue
		}

		decls = append(decls, d)
		writeScopedRule(&out, scopeID, d)
	}
	out.WriteString(cssText[last:])

	t.log.Debug("Transformed scope styles", zap.Int64("scope", scopeID), zap.Int("declarations", len(decls)))
	return Result{CSS: out.String(), Decls: decls, Found: true}
}

// writeScopedRule emits the custom-property rule replacing one part rule.
// An empty prefix selector becomes the universal selector.
func writeScopedRule(b *strings.Builder, scopeID int64, d Declaration) {
	sel := d.Selector
	if sel == "" {
		sel = "*"
	}
	fmt.Fprintf(b, "%s {\n", sel)
	for _, p := range d.Properties {
		fmt.Fprintf(b, "  %s: %s;\n", PropName(scopeID, d.Name, p.Name, d.EndSelector), p.Value)
	}
	b.WriteString("}\n")
}

// parseBlock parses one declaration block with the CSS tokenizer in inline
// mode, preserving declaration order. Colons inside values (times, URLs)
// survive since splitting happens on real tokens.
func (t *Transformer) parseBlock(block string) []Property {
	input := parse.NewInput(strings.NewReader(block))
	parser := css.NewParser(input, true)

	var props []Property
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return props
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			if value := joinTokens(parser.Values()); value != "" {
				props = append(props, Property{Name: string(data), Value: value})
			}
		}
	}
}

// joinTokens rebuilds a property value from its tokens, collapsing
// whitespace runs to single spaces.
func joinTokens(tokens []css.Token) string {
	var parts []string
	for _, tok := range tokens {
		if tok.TokenType != css.WhitespaceToken {
			parts = append(parts, string(tok.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}
