package resolve_test

import (
	"strings"
	"testing"

	"partcss/dom"
	"partcss/match"
	"partcss/resolve"
)

func matchHints(classes ...string) match.Hints {
	return match.Hints{ConstantClasses: classes}
}

func mustParse(t *testing.T, s string) *dom.Document {
	t.Helper()
	d, err := dom.ParseString(s, nil)
	if err != nil {
		t.Fatalf("unable to parse document: %v", err)
	}
	return d
}

func host(t *testing.T, d *dom.Document, tag string) resolve.Node {
	t.Helper()
	for _, h := range d.ScopeHosts() {
		if h.(*dom.Node).Tag() == tag {
			return h
		}
	}
	t.Fatalf("no scope host with tag %q", tag)
	return nil
}

func TestEndToEnd(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>.box::part(label) { color: red; }</style>
  <x-card class="box">
    <span part="label">hi</span>
  </x-card>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")

	props := r.PropsForPart("label", card, false)
	if props == nil {
		t.Fatal("label did not resolve")
	}
	bucket, ok := props[""]
	if !ok {
		t.Fatalf("missing empty bucket, got %v", props)
	}
	// The declaring scope was registered first and holds id 1.
	if bucket["color"] != "var(--e1-part-label-color)" {
		t.Errorf("color = %q, want %q", bucket["color"], "var(--e1-part-label-color)")
	}

	r.Apply(card, 1)
	out := d.String()
	if !strings.Contains(out, `[part="label"] {`) {
		t.Errorf("generated rule missing:\n%s", out)
	}
	if !strings.Contains(out, "color: var(--e1-part-label-color);") {
		t.Errorf("generated property missing:\n%s", out)
	}
	// The declaring scope's stylesheet now assigns the custom property.
	app := host(t, d, "x-app")
	rewritten := d.StyleText(app)
	if !strings.Contains(rewritten, ".box {") || !strings.Contains(rewritten, "--e1-part-label-color: red;") {
		t.Errorf("host CSS not rewritten:\n%s", rewritten)
	}
	if strings.Contains(rewritten, "::part") {
		t.Errorf("part rule left in host CSS:\n%s", rewritten)
	}
}

func TestThemeIsolation(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>x-mid::part(t) { color: red; }
::theme(t) { background: blue; }</style>
  <x-mid>
    <x-inner>
      <span part="t">x</span>
    </x-inner>
  </x-mid>
</x-app>`)
	r := resolve.New(d, nil)
	inner := host(t, d, "x-inner")

	// Theme-only resolution must never surface the non-theme declaration.
	themed := r.PropsForPart("t", inner, true)
	if themed == nil {
		t.Fatal("theme lookup did not resolve")
	}
	if _, ok := themed[""]["color"]; ok {
		t.Error("theme-only lookup surfaced a non-theme property")
	}
	if _, ok := themed[""]["background"]; !ok {
		t.Error("theme-only lookup missed the theme property")
	}

	// Plain part styling does not propagate past the immediate container:
	// x-app's ::part rule targets x-mid's scope, not x-inner's.
	plain := r.PropsForPart("t", inner, false)
	if _, ok := plain[""]["color"]; ok {
		t.Error("plain part declaration crossed an intermediate scope")
	}
	if _, ok := plain[""]["background"]; !ok {
		t.Error("theme declaration did not propagate transitively")
	}
}

func TestMergePrecedence(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>::theme(label) { color: blue; padding: 1em; }</style>
  <x-mid>
    <style>::part(label) { color: red; }</style>
    <x-card>
      <span part="label">x</span>
    </x-card>
  </x-mid>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")

	props := r.PropsForPart("label", card, false)
	bucket := props[""]
	if bucket == nil {
		t.Fatalf("missing empty bucket, got %v", props)
	}

	// x-mid registered first (id 1); its direct declaration wins over the
	// theme ancestor for the shared property.
	if bucket["color"] != "var(--e1-part-label-color)" {
		t.Errorf("color = %q, want the direct container's reference", bucket["color"])
	}
	// The theme ancestor (id 2) fills the gap.
	if bucket["padding"] != "var(--e2-part-label-padding)" {
		t.Errorf("padding = %q, want the theme ancestor's reference", bucket["padding"])
	}
}

func TestWildcardForwarding(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>::part(btn-foo) { color: red; }</style>
  <x-mid partmap="* btn-*">
    <x-card>
      <span part="foo">x</span>
    </x-card>
  </x-mid>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")

	props := r.PropsForPart("foo", card, false)
	if props == nil {
		t.Fatal("forwarded part did not resolve")
	}
	if _, ok := props[""]["color"]; !ok {
		t.Errorf("wildcard forwarding missed btn-foo: %v", props)
	}
}

func TestExactForwarding(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>::part(outer) { color: red; }</style>
  <x-mid partmap="inner outer">
    <x-card>
      <span part="inner">x</span>
    </x-card>
  </x-mid>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")

	props := r.PropsForPart("inner", card, false)
	if props == nil || props[""]["color"] == "" {
		t.Fatalf("renamed part did not resolve: %v", props)
	}

	// Other names do not ride the forwarding entry.
	if r.PropsForPart("other", card, false) != nil {
		t.Error("unrelated name resolved through an exact forwarding entry")
	}
}

func TestEndSelectorBuckets(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>.box::part(label) { color: red; }
.box::part(label):hover { color: blue; }</style>
  <x-card class="box">
    <span part="label">x</span>
  </x-card>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")

	props := r.PropsForPart("label", card, false)
	if len(props) != 2 {
		t.Fatalf("expected 2 buckets, got %v", props)
	}
	if props[""]["color"] != "var(--e1-part-label-color)" {
		t.Errorf("plain bucket = %v", props[""])
	}
	if props[":hover"]["color"] != "var(--e1-part-label-color-hover)" {
		t.Errorf("hover bucket = %v", props[":hover"])
	}

	r.Apply(card, 1)
	out := d.String()
	if !strings.Contains(out, `[part="label"] {`) || !strings.Contains(out, `[part="label"]:hover {`) {
		t.Errorf("bucket rules missing:\n%s", out)
	}
}

func TestSelectorFiltering(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>.other::part(label) { color: red; }</style>
  <x-card class="box">
    <span part="label">x</span>
  </x-card>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")

	if props := r.PropsForPart("label", card, false); props != nil {
		t.Errorf("declaration with non-matching selector applied: %v", props)
	}
}

func TestPrefilterHints(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>.box:fancy::part(label) { color: red; }</style>
  <x-card class="box">
    <span part="label">x</span>
  </x-card>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")

	// The static matcher rejects :fancy, so without hints nothing resolves.
	if props := r.PropsForPart("label", card, false); props != nil {
		t.Fatalf("stateful pseudo matched without hints: %v", props)
	}

	// Declaring :fancy constant for the x-card type prunes it before the
	// real match, which then succeeds on the remaining .box.
	d2 := mustParse(t, `<x-app>
  <style>.box:fancy::part(label) { color: red; }</style>
  <x-card class="box">
    <span part="label">x</span>
  </x-card>
</x-app>`)
	r2 := resolve.New(d2, nil)
	r2.Scopes().DeclareHints("x-card", matchHints("fancy"))
	card2 := host(t, d2, "x-card")

	props := r2.PropsForPart("label", card2, false)
	if props == nil || props[""]["color"] == "" {
		t.Errorf("pruned selector did not match: %v", props)
	}
}

func TestUnresolvableName(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>.box::part(label) { color: red; }</style>
  <x-card class="box">
    <span part="label">x</span>
    <span part="ghost">y</span>
  </x-card>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")

	if props := r.PropsForPart("ghost", card, false); props != nil {
		t.Errorf("undeclared part resolved: %v", props)
	}

	// The miss must not prevent the sibling part from being styled.
	r.Apply(card, 1)
	out := d.String()
	if !strings.Contains(out, `[part="label"]`) {
		t.Errorf("resolvable sibling lost its rule:\n%s", out)
	}
	if strings.Contains(out, `[part="ghost"]`) {
		t.Errorf("unresolvable part produced a rule:\n%s", out)
	}
}

func TestNegativeCacheIdempotence(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>p { margin: 0; }</style>
  <x-card>
    <span part="label">x</span>
  </x-card>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")
	app := host(t, d, "x-app")

	before := d.StyleText(app)
	if props := r.PropsForPart("label", card, false); props != nil {
		t.Fatalf("resolved without declarations: %v", props)
	}
	if props := r.PropsForPart("label", card, false); props != nil {
		t.Fatalf("second resolution differed: %v", props)
	}
	if got := r.Transformer().Scans(); got != 1 {
		t.Errorf("style text scanned %d times, want 1", got)
	}
	if d.StyleText(app) != before {
		t.Error("negative transformation changed the style text")
	}
}

func TestApplyTickDebounce(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>.box::part(label) { color: red; }</style>
  <x-card class="box">
    <span part="label">x</span>
  </x-card>
</x-app>`)
	r := resolve.New(d, nil)
	card := host(t, d, "x-card")

	r.Apply(card, 7)
	if !strings.Contains(d.String(), `[part="label"]`) {
		t.Fatal("first apply produced no styling")
	}

	// Simulate external loss of the generated block; the same tick must
	// stay a no-op.
	d.SetGeneratedStyle(card, "")
	r.Apply(card, 7)
	if strings.Contains(d.String(), `[part="label"] {`) {
		t.Error("repeated tick re-applied styling")
	}

	r.Apply(card, 8)
	if !strings.Contains(d.String(), `[part="label"] {`) {
		t.Error("new tick did not re-apply styling")
	}
}

func TestForwardingSkippedForThemeLookups(t *testing.T) {
	d := mustParse(t, `<x-app>
  <style>::part(btn-t) { color: red; }</style>
  <x-mid partmap="* btn-*">
    <x-inner>
      <span part="t">x</span>
    </x-inner>
  </x-mid>
</x-app>`)
	r := resolve.New(d, nil)
	inner := host(t, d, "x-inner")

	// The theme channel carries theme intent only; x-mid's partmap must
	// not be consulted during the pure-theme ascent.
	if props := r.PropsForPart("t", inner, true); props != nil {
		t.Errorf("theme lookup followed forwarding: %v", props)
	}
}
