package dom_test

import (
	"strings"
	"testing"

	"partcss/dom"
	"partcss/resolve"
)

const page = `<x-app>
  <style>p { margin: 0; }</style>
  <div class="wrap">
    <x-card class="box">
      <style>.inner { color: black; }</style>
      <span part="label">hi</span>
      <div>
        <span part="icon, badge">!</span>
      </div>
      <x-button part="button">
        <span part="caption">deep</span>
      </x-button>
    </x-card>
  </div>
</x-app>`

func mustParse(t *testing.T, s string) *dom.Document {
	t.Helper()
	d, err := dom.ParseString(s, nil)
	if err != nil {
		t.Fatalf("unable to parse document: %v", err)
	}
	return d
}

func findHost(t *testing.T, d *dom.Document, tag string) resolve.Node {
	t.Helper()
	for _, h := range d.ScopeHosts() {
		if n, ok := h.(*dom.Node); ok && n.Tag() == tag {
			return h
		}
	}
	t.Fatalf("no scope host with tag %q", tag)
	return nil
}

func TestScopeHosts(t *testing.T) {
	d := mustParse(t, page)
	hosts := d.ScopeHosts()
	if len(hosts) != 3 {
		t.Fatalf("expected 3 scope hosts, got %d", len(hosts))
	}
	tags := []string{"x-app", "x-card", "x-button"}
	for i, h := range hosts {
		if h.(*dom.Node).Tag() != tags[i] {
			t.Errorf("host %d tag = %q, want %q", i, h.(*dom.Node).Tag(), tags[i])
		}
	}
}

func TestContainer(t *testing.T) {
	d := mustParse(t, page)

	app := findHost(t, d, "x-app")
	card := findHost(t, d, "x-card")
	button := findHost(t, d, "x-button")

	if d.Container(app) != nil {
		t.Error("root has no container")
	}
	if d.Container(card) != app {
		t.Error("card container is not app")
	}
	if d.Container(button) != card {
		t.Error("button container is not card")
	}
}

func TestContainer_Interning(t *testing.T) {
	d := mustParse(t, page)
	button := findHost(t, d, "x-button")

	// Repeated calls must return the identical node value.
	if d.Container(button) != d.Container(button) {
		t.Error("container node not interned")
	}
}

func TestPartNodes(t *testing.T) {
	d := mustParse(t, page)
	card := findHost(t, d, "x-card")

	nodes := d.PartNodes(card)
	var attrs []string
	for _, n := range nodes {
		attrs = append(attrs, n.Attr("part"))
	}

	// The nested x-button exposes itself but its inner caption belongs to
	// the button's own subtree.
	want := []string{"label", "icon, badge", "button"}
	if len(attrs) != len(want) {
		t.Fatalf("part attributes = %v, want %v", attrs, want)
	}
	for i := range want {
		if attrs[i] != want[i] {
			t.Errorf("part node %d = %q, want %q", i, attrs[i], want[i])
		}
	}
}

func TestStyleText(t *testing.T) {
	d := mustParse(t, page)
	card := findHost(t, d, "x-card")

	if got := d.StyleText(card); got != ".inner { color: black; }" {
		t.Errorf("style text = %q", got)
	}

	d.SetStyleText(card, ".inner { color: red; }")
	if got := d.StyleText(card); got != ".inner { color: red; }" {
		t.Errorf("style text after rewrite = %q", got)
	}
}

func TestGeneratedStyle(t *testing.T) {
	d := mustParse(t, page)
	card := findHost(t, d, "x-card")

	d.SetGeneratedStyle(card, "[part=\"label\"] { color: var(--x); }")

	// The generated block is invisible to StyleText.
	if strings.Contains(d.StyleText(card), "var(--x)") {
		t.Error("generated block leaked into scope style text")
	}
	if !strings.Contains(d.String(), "var(--x)") {
		t.Error("generated block missing from document")
	}

	// Replacement removes the prior block.
	d.SetGeneratedStyle(card, "[part=\"label\"] { color: var(--y); }")
	out := d.String()
	if strings.Contains(out, "var(--x)") {
		t.Error("stale generated block survived replacement")
	}
	if !strings.Contains(out, "var(--y)") {
		t.Error("new generated block missing")
	}

	// Empty text removes without re-adding.
	d.SetGeneratedStyle(card, "")
	if strings.Contains(d.String(), "var(--y)") {
		t.Error("generated block survived removal")
	}
}

func TestMatches(t *testing.T) {
	d := mustParse(t, page)
	card := findHost(t, d, "x-card")
	button := findHost(t, d, "x-button")

	cases := []struct {
		node resolve.Node
		sel  string
		want bool
	}{
		{card, ".box", true},
		{card, "x-card", true},
		{card, "X-CARD", true},
		{card, "*", true},
		{card, ".other", false},
		{card, "div.wrap x-card", true},
		{card, "div.wrap > x-card", true},
		{card, "x-app .box", true},
		{card, "x-app > .box", false},
		{card, "[class]", true},
		{card, `[class="box"]`, true},
		{card, `[class~=box]`, true},
		{card, `[class="nope"]`, false},
		{card, ".box:hover", false},
		{button, "[part]", true},
		{button, `[part=button]`, true},
		{button, ".box x-button", true},
		{button, "x-app x-card x-button", true},
		{button, "a + b", false},
	}
	for _, tc := range cases {
		if got := d.Matches(tc.node, tc.sel); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.sel, got, tc.want)
		}
	}
}

func TestDumpScopes(t *testing.T) {
	d := mustParse(t, page)
	out := d.DumpScopes()

	for _, want := range []string{
		"scope <x-app>",
		"scope <x-card>",
		`scope <x-button> part="button"`,
		`part "label" <span>`,
		`part "icon, badge" <span>`,
		"styles 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump is missing %q:\n%s", want, out)
		}
	}
	// caption belongs to the nested x-button scope and must be rendered
	// under it, not under x-card.
	if strings.Index(out, `part "caption"`) < strings.Index(out, "scope <x-button>") {
		t.Errorf("nested scope parts leaked into outer dump:\n%s", out)
	}
}
