package resolve

import (
	"go.uber.org/zap"

	"partcss/attr"
	"partcss/css"
	"partcss/match"
	"partcss/scope"
)

// PropertyMap holds resolved part styling: bucket key (empty string, or an
// end-selector suffix such as ":hover") to property name to custom-property
// reference. Maps are transient and recomputed on every resolution request.
type PropertyMap map[string]map[string]string

// Resolver walks ancestor scopes to resolve part styling and applies the
// result to rendering subtrees.
type Resolver struct {
	host        Host
	scopes      *scope.Registry
	transformer *css.Transformer
	log         *zap.Logger
}

// New creates a resolver over the given host tree.
func New(host Host, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		host:        host,
		scopes:      scope.NewRegistry(log),
		transformer: css.NewTransformer(log),
		log:         log.Named("resolve"),
	}
}

// Scopes exposes the scope registry, e.g. for declaring pre-filter hints.
func (r *Resolver) Scopes() *scope.Registry {
	return r.scopes
}

// Transformer exposes the rule transformer; tests observe its scan count.
func (r *Resolver) Transformer() *css.Transformer {
	return r.transformer
}

// Declarations returns the part declarations of the scope hosted by n,
// transforming its style text on first access. The result, positive or
// negative, is memoized for the scope's lifetime: the transformation
// rewrites live style text and must run at most once per scope.
func (r *Resolver) Declarations(n Node) []css.Declaration {
	rec := r.scopes.Obtain(n)
	if rec.Scanned() {
		return rec.Declarations()
	}
	res := r.transformer.Transform(rec.ID, r.host.StyleText(n))
	if res.Found {
		r.host.SetStyleText(n, res.CSS)
	}
	rec.SetDeclarations(res.Decls)
	return rec.Declarations()
}

// PropsForPart resolves the properties every entitled ancestor scope
// contributes to part name on node n. With themeOnly set only ::theme
// declarations qualify; otherwise both kinds do. Theme intent propagates
// transitively through further ancestors while plain part styling reaches
// only the immediate container. An unresolvable name yields nil, never an
// error: a styling miss is cosmetic.
func (r *Resolver) PropsForPart(name string, n Node, themeOnly bool) PropertyMap {
	container := r.host.Container(n)
	if container == nil || container == n {
		return nil
	}

	rec := r.scopes.Lookup(container)
	if rec == nil || !rec.Scanned() {
		r.Declarations(container)
		rec = r.scopes.Lookup(container)
	}

	props := make(PropertyMap)
	hints := r.scopes.Hints(r.host.TypeName(n))
	for _, d := range rec.Declarations() {
		if d.Name != name {
			continue
		}
		if themeOnly && !d.Theme {
			continue
		}
		pruned, always := match.Prune(d.Selector, hints)
		if !always && !r.host.Matches(n, pruned) {
			continue
		}
		bucket := props[d.EndSelector]
		if bucket == nil {
			bucket = make(map[string]string)
			props[d.EndSelector] = bucket
		}
		// Later declarations of the same scope overwrite earlier ones here:
		// last-match-wins within one scope, by declaration order.
		for _, p := range d.Properties {
			bucket[p.Name] = css.PropRef(rec.ID, name, p.Name, d.EndSelector)
		}
	}

	// Theme declarations of further ancestors apply transitively. Merging
	// them after the direct properties keeps nearer declarations winning.
	mergeProps(props, r.PropsForPart(name, container, true))

	// Forwarding is a part-identity mechanism, not a theme one; pure-theme
	// lookups skip it, which also rules out forwarding loops.
	if !themeOnly {
		for _, ref := range attr.ParsePartmap(container.Attr("partmap")) {
			if !ref.ForwardsFor(name) {
				continue
			}
			outward := ref.Outward(name)
			r.log.Debug("Following part forwarding", zap.String("part", name), zap.String("outward", outward))
			mergeProps(props, r.PropsForPart(outward, container, false))
		}
	}

	if len(props) == 0 {
		return nil
	}
	return props
}

// mergeProps unions src into dst bucket-wise without overwriting: a
// property already present under the same bucket keeps its nearer value,
// further or theme-sourced values fill gaps only.
func mergeProps(dst, src PropertyMap) {
	for key, from := range src {
		bucket := dst[key]
		if bucket == nil {
			bucket = make(map[string]string)
			dst[key] = bucket
		}
		for prop, ref := range from {
			if _, ok := bucket[prop]; !ok {
				bucket[prop] = ref
			}
		}
	}
}
