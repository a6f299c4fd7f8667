package resolve

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"partcss/attr"
)

// Apply regenerates the injected style block of n's rendering subtree: it
// resolves every part name exposed inside the subtree and writes one rule
// per non-empty bucket into a single marker-tagged style block.
//
// Equal tick tokens make the call a no-op, collapsing coalesced lifecycle
// signals into at most one application per tick and node. The caller owns
// the coalescing itself; the resolver only compares tokens. Re-applying
// with a new token is idempotent.
func (r *Resolver) Apply(n Node, tick uint64) {
	rec := r.scopes.Obtain(n)
	if !rec.BeginTick(tick) {
		r.log.Debug("Skipping repeated apply", zap.Uint64("tick", tick))
		return
	}

	r.host.SetGeneratedStyle(n, "")

	container := r.host.Container(n)
	if container == nil || container == n {
		return
	}
	r.Declarations(container)

	var b strings.Builder
	for _, part := range r.host.PartNodes(n) {
		raw := part.Attr("part")
		for _, ref := range attr.ParseParts(raw) {
			if ref.Forwarding() {
				continue
			}
			writeRules(&b, raw, r.PropsForPart(ref.Name, n, false))
		}
	}
	if b.Len() == 0 {
		return
	}
	r.host.SetGeneratedStyle(n, b.String())
}

// writeRules emits one rule per non-empty bucket, selecting the original
// part attribute value with the bucket suffix appended. Buckets and
// properties are written in sorted order for deterministic output.
func writeRules(b *strings.Builder, rawAttr string, props PropertyMap) {
	for _, bucket := range slices.Sorted(maps.Keys(props)) {
		refs := props[bucket]
		if len(refs) == 0 {
			continue
		}
		fmt.Fprintf(b, "[part=%q]%s {\n", rawAttr, bucket)
		for _, prop := range slices.Sorted(maps.Keys(refs)) {
			fmt.Fprintf(b, "  %s: %s;\n", prop, refs[prop])
		}
		b.WriteString("}\n")
	}
}
