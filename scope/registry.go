// Package scope tracks styling scopes: stable scope identifiers, memoized
// part declarations and per-tick apply bookkeeping.
package scope

import (
	"go.uber.org/zap"

	"partcss/css"
	"partcss/match"
)

// Record is the bookkeeping entry of one scope instance.
type Record struct {
	// ID is assigned once, on first access, and never changes for the
	// lifetime of the scope. Generated custom-property names depend on it.
	ID int64

	scanned bool
	decls   []css.Declaration

	applied     bool
	lastApplied uint64
}

// Scanned reports whether a transformation result was already stored for
// this scope, including the negative "no part rules" result.
func (r *Record) Scanned() bool {
	return r.scanned
}

// Declarations returns the memoized declaration list, nil when the scope
// declares nothing.
func (r *Record) Declarations() []css.Declaration {
	return r.decls
}

// SetDeclarations stores a transformation result. The store is write-once:
// a second call is ignored, so a scope's style text is never scanned twice.
func (r *Record) SetDeclarations(decls []css.Declaration) {
	if r.scanned {
		return
	}
	r.scanned = true
	r.decls = decls
}

// BeginTick compares token against the last applied tick. It returns false
// when styling was already applied for this token, collapsing coalesced
// lifecycle signals into a single application per tick.
func (r *Record) BeginTick(token uint64) bool {
	if r.applied && r.lastApplied == token {
		return false
	}
	r.applied = true
	r.lastApplied = token
	return true
}

// Registry is an identity-keyed side table of scope records. Scope state is
// never attached to the host's own objects; all of it lives here.
type Registry struct {
	log     *zap.Logger
	nextID  int64
	records map[any]*Record
	hints   map[string]match.Hints
}

// NewRegistry creates an empty scope registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:     log.Named("scopes"),
		records: make(map[any]*Record),
		hints:   make(map[string]match.Hints),
	}
}

// Obtain returns the record for node, assigning the next scope id on first
// access. Ids are monotonic and never reused or recomputed.
func (g *Registry) Obtain(node any) *Record {
	if rec, ok := g.records[node]; ok {
		return rec
	}
	g.nextID++
	rec := &Record{ID: g.nextID}
	g.records[node] = rec
	g.log.Debug("Registered scope", zap.Int64("id", rec.ID))
	return rec
}

// Lookup returns the record for node, or nil when the node was never seen.
func (g *Registry) Lookup(node any) *Record {
	return g.records[node]
}

// DeclareHints registers pre-filter hints for a scope type.
func (g *Registry) DeclareHints(typeName string, h match.Hints) {
	g.hints[typeName] = h
}

// Hints returns the pre-filter hints of a scope type. The zero value, for
// unknown types, prunes nothing.
func (g *Registry) Hints(typeName string) match.Hints {
	return g.hints[typeName]
}
