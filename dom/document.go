// Package dom provides a reference host tree for part style resolution,
// backed by etree documents. It exists so the resolver can be exercised end
// to end against a real element tree; it is a test and tooling vehicle, not
// a browser emulation.
//
// Conventions: an element whose tag contains a dash hosts its own styling
// scope (custom-element convention), as does the document root. A scope's
// style text lives in the direct style children of its host element.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"partcss/resolve"
)

// Document wraps an etree document and implements resolve.Host over it.
type Document struct {
	doc   *etree.Document
	log   *zap.Logger
	nodes map[*etree.Element]*Node
}

// Node is one element of the document. Nodes are interned: a given element
// is always represented by the same Node, so node identity is usable as a
// scope key.
type Node struct {
	el *etree.Element
}

// Attr implements resolve.Node.
func (n *Node) Attr(name string) string {
	return n.el.SelectAttrValue(name, "")
}

// Tag returns the element tag.
func (n *Node) Tag() string {
	return n.el.Tag
}

// Parse reads an XML document. The reader settings are permissive, HTML-ish
// input is acceptable as long as it is well formed enough for etree.
func Parse(r io.Reader, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		Permissive:    true,
		ValidateInput: false,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return &Document{
		doc:   doc,
		log:   log.Named("dom"),
		nodes: make(map[*etree.Element]*Node),
	}, nil
}

// ParseString reads an XML document from a string.
func ParseString(s string, log *zap.Logger) (*Document, error) {
	return Parse(strings.NewReader(s), log)
}

// Root returns the document root node.
func (d *Document) Root() *Node {
	return d.node(d.doc.Root())
}

// WriteTo serializes the document, implementing io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.doc.WriteTo(w)
}

// String returns the serialized document, empty on write failure.
func (d *Document) String() string {
	s, err := d.doc.WriteToString()
	if err != nil {
		d.log.Warn("Unable to serialize document", zap.Error(err))
		return ""
	}
	return s
}

// node interns the wrapper for el.
func (d *Document) node(el *etree.Element) *Node {
	if el == nil {
		return nil
	}
	if n, ok := d.nodes[el]; ok {
		return n
	}
	n := &Node{el: el}
	d.nodes[el] = n
	return n
}

// element unwraps a resolve.Node back to its etree element.
func (d *Document) element(n resolve.Node) *etree.Element {
	if dn, ok := n.(*Node); ok && dn != nil {
		return dn.el
	}
	return nil
}

// isScopeHost reports whether el starts its own styling scope.
func (d *Document) isScopeHost(el *etree.Element) bool {
	return el == d.doc.Root() || strings.Contains(el.Tag, "-")
}

// ScopeHosts returns every scope host element in document order, the root
// first.
func (d *Document) ScopeHosts() []resolve.Node {
	var hosts []resolve.Node
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		if d.isScopeHost(el) {
			hosts = append(hosts, d.node(el))
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(d.doc.Root())
	return hosts
}

// Container implements resolve.Host: the nearest strict ancestor hosting a
// scope, nil at the top of the tree.
func (d *Document) Container(n resolve.Node) resolve.Node {
	el := d.element(n)
	if el == nil {
		return nil
	}
	for p := el.Parent(); p != nil; p = p.Parent() {
		if d.isScopeHost(p) {
			return d.node(p)
		}
	}
	return nil
}

// TypeName implements resolve.Host using the element tag.
func (d *Document) TypeName(n resolve.Node) string {
	if el := d.element(n); el != nil {
		return el.Tag
	}
	return ""
}

// Matches implements resolve.Host with the static selector matcher.
func (d *Document) Matches(n resolve.Node, selector string) bool {
	el := d.element(n)
	if el == nil {
		return false
	}
	return matchSelector(el, selector)
}

// styleChildren returns host's direct style children, either the scope's
// own stylesheets or the injector-generated block.
func (d *Document) styleChildren(host resolve.Node, generated bool) []*etree.Element {
	el := d.element(host)
	if el == nil {
		return nil
	}
	var styles []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag != "style" {
			continue
		}
		if (child.SelectAttr(resolve.MarkerAttr) != nil) == generated {
			styles = append(styles, child)
		}
	}
	return styles
}

// StyleText implements resolve.Host: the concatenated text of the scope's
// own style children.
func (d *Document) StyleText(host resolve.Node) string {
	var b strings.Builder
	for _, st := range d.styleChildren(host, false) {
		b.WriteString(st.Text())
	}
	return b.String()
}

// SetStyleText implements resolve.Host. The first style child receives the
// rewritten text, any further ones are dropped since their content was
// already folded into it by StyleText.
func (d *Document) SetStyleText(host resolve.Node, cssText string) {
	styles := d.styleChildren(host, false)
	if len(styles) == 0 {
		if el := d.element(host); el != nil {
			el.CreateElement("style").SetText(cssText)
		}
		return
	}
	styles[0].SetText(cssText)
	for _, extra := range styles[1:] {
		extra.Parent().RemoveChild(extra)
	}
}

// PartNodes implements resolve.Host. Descent stops at nested scope hosts:
// their parts belong to their own rendering subtree. A nested host carrying
// a part attribute is itself included, it exposes that part to this scope.
func (d *Document) PartNodes(host resolve.Node) []resolve.Node {
	el := d.element(host)
	if el == nil {
		return nil
	}
	var nodes []resolve.Node
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			if child.SelectAttrValue("part", "") != "" {
				nodes = append(nodes, d.node(child))
			}
			if d.isScopeHost(child) {
				continue
			}
			walk(child)
		}
	}
	walk(el)
	return nodes
}

// SetGeneratedStyle implements resolve.Host.
func (d *Document) SetGeneratedStyle(host resolve.Node, cssText string) {
	for _, old := range d.styleChildren(host, true) {
		old.Parent().RemoveChild(old)
	}
	if cssText == "" {
		return
	}
	el := d.element(host)
	if el == nil {
		return
	}
	st := el.CreateElement("style")
	st.CreateAttr(resolve.MarkerAttr, "")
	st.SetText(cssText)
}
