// Package resolve computes the merged part style contributions of every
// ancestor scope entitled to style a node, and injects the result as
// generated style rules.
package resolve

// MarkerAttr is the reserved attribute tagging style blocks the injector
// generates, so they can be replaced on the next application.
const MarkerAttr = "part-generated"

// Node is a single element of the host tree.
type Node interface {
	// Attr returns the value of the named attribute, empty when absent.
	Attr(name string) string
}

// Host adapts the rendering tree the resolver operates on. The resolver
// assumes nothing about the host's component model beyond these operations.
//
// Implementations must intern nodes: the same underlying element has to be
// represented by the same Node value on every call, since scope records are
// keyed by node identity.
type Host interface {
	// Container returns the host element of the scope enclosing n, or nil
	// when n is at the top of the tree.
	Container(n Node) Node

	// Matches reports whether n matches the selector.
	Matches(n Node, selector string) bool

	// TypeName identifies n's scope type, the key under which pre-filter
	// hints are registered.
	TypeName(n Node) string

	// StyleText returns the style text of the scope rooted at host.
	StyleText(host Node) string

	// SetStyleText installs rewritten style text for the scope rooted at
	// host, replacing the original.
	SetStyleText(host Node, cssText string)

	// PartNodes enumerates the descendants of host that carry a part
	// attribute and belong to host's own rendering subtree.
	PartNodes(host Node) []Node

	// SetGeneratedStyle replaces the MarkerAttr-tagged style block of the
	// scope rooted at host. Empty text removes the block without adding a
	// new one.
	SetGeneratedStyle(host Node, cssText string)
}
