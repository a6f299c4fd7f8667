package dom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// treeWriter accumulates an indented textual rendering of the scope tree.
type treeWriter struct {
	w *strings.Builder
}

func newTreeWriter() *treeWriter {
	return &treeWriter{
		w: &strings.Builder{},
	}
}

func (tw treeWriter) String() string {
	return tw.w.String()
}

func (tw treeWriter) Line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// DumpScopes renders the scope host hierarchy with the part surface each
// scope exposes. Intended for debug logging and inspection, the output
// format is not stable.
func (d *Document) DumpScopes() string {
	tw := newTreeWriter()
	var walk func(el *etree.Element, depth int)
	walk = func(el *etree.Element, depth int) {
		if d.isScopeHost(el) {
			tw.Line(depth, "scope <%s>%s", el.Tag, scopeBadges(el))
			host := d.node(el)
			for _, pn := range d.PartNodes(host) {
				tw.Line(depth+1, "part %s <%s>", strconv.Quote(pn.(*Node).Attr("part")), pn.(*Node).Tag())
			}
			if styles := d.styleChildren(host, false); len(styles) > 0 {
				tw.Line(depth+1, "styles %d", len(styles))
			}
			depth++
		}
		for _, child := range el.ChildElements() {
			walk(child, depth)
		}
	}
	walk(d.doc.Root(), 0)
	return tw.String()
}

// scopeBadges summarizes the forwarding attributes on a scope host.
func scopeBadges(el *etree.Element) string {
	var b strings.Builder
	if v := el.SelectAttrValue("part", ""); v != "" {
		fmt.Fprintf(&b, " part=%s", strconv.Quote(v))
	}
	if v := el.SelectAttrValue("partmap", ""); v != "" {
		fmt.Fprintf(&b, " partmap=%s", strconv.Quote(v))
	}
	return b.String()
}
