package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/npillmayer/haspoly/alias"
	"github.com/npillmayer/haspoly/dom"
	"github.com/npillmayer/haspoly/dom/w3cdom"
	"github.com/npillmayer/haspoly/match"
	"github.com/npillmayer/haspoly/stylesheet"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, s string) *dom.Document {
	doc, err := dom.ParseString(s)
	require.NoError(t, err)
	doc.SetErrorHandler(func(err error) {
		t.Logf("document error: %v", err)
	})
	return doc
}

func first(t *testing.T, doc *dom.Document, sel string) *html.Node {
	n, err := doc.QueryFirst(nil, sel)
	require.NoError(t, err)
	require.NotNil(t, n, "no element for %q", sel)
	return n
}

func inlineEngine(t *testing.T, doc *dom.Document, opts ...Option) *Engine {
	loader := stylesheet.NewLoader(doc, alias.NewRegistry(), nil)
	return New(doc, nil, append([]Option{WithLoader(loader)}, opts...)...)
}

func marker(t *testing.T, e *Engine, outer string, n int) string {
	aliases := e.Registry().Lookup(outer)
	require.Greater(t, len(aliases), n, "too few aliases for %q", outer)
	return aliases[n].Marker
}

const cardPage = `<html><head>
<style>.card:has(.badge) { color: red; }</style>
</head><body>
<div class="card" id="c1"><p><span class="badge">new</span></p></div>
<div class="card" id="c2"><p>plain</p></div>
</body></html>`

func TestCardWithBadge(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	for _, tester := range []string{"scoped", "native"} {
		doc := parse(t, cardPage)
		var opts []Option
		if tester == "native" {
			opts = append(opts, WithTester(match.NewNative(doc)))
		}
		e := inlineEngine(t, doc, opts...)
		require.NoError(t, e.Start(context.Background()))
		m := marker(t, e, ".card", 0)
		c1, c2 := first(t, doc, "#c1"), first(t, doc, "#c2")
		if !doc.HasClass(c1, m) {
			t.Errorf("%s: expected card with badge to carry marker %q", tester, m)
		}
		if doc.HasClass(c2, m) {
			t.Errorf("%s: expected card without badge not to carry marker %q", tester, m)
		}
		// structural changes trigger a rescan
		doc.RemoveChild(first(t, doc, ".badge"))
		if doc.HasClass(c1, m) {
			t.Errorf("%s: expected marker to be removed with the badge", tester)
		}
		badge := doc.CreateElement("b")
		doc.AppendChild(c2, badge)
		doc.AddClass(badge, "badge")
		if !doc.HasClass(c2, m) {
			t.Errorf("%s: expected marker on card which received a badge", tester)
		}
		assert.NotContains(t, doc.String(), match.ScopeAttr)
		t.Logf("%s: %s", tester, e.Stats())
	}
}

func TestTwoAliasesForOneOuter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, `<html><head><style>
	.card:has(.a) { color: red } .card:has(.b) { color: blue }
	</style></head><body><div class="card"><i class="a"></i></div></body></html>`)
	e := inlineEngine(t, doc)
	require.NoError(t, e.Start(context.Background()))
	aliases := e.Registry().Lookup(".card")
	require.Len(t, aliases, 2)
	mb, ma := aliases[0].Marker, aliases[1].Marker // newest first
	assert.Equal(t, ".b", aliases[0].Inner)
	card := first(t, doc, "div.card")
	assert.True(t, doc.HasClass(card, ma), "expected marker for .a")
	assert.False(t, doc.HasClass(card, mb), "expected no marker for .b")
}

func TestFullRescanIsIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, cardPage)
	e := inlineEngine(t, doc)
	require.NoError(t, e.Start(context.Background()))
	classChanges := 0
	doc.Observe(func(records []w3cdom.MutationRecord) error {
		for _, r := range records {
			if r.Attribute == "class" {
				classChanges++
			}
		}
		return nil
	}).Connect()
	toggles := e.Stats().Toggles
	require.NoError(t, e.FullRescan(context.Background()))
	require.NoError(t, e.FullRescan(context.Background()))
	assert.Equal(t, 0, classChanges)
	assert.Equal(t, toggles, e.Stats().Toggles)
	assert.Equal(t, 3, e.Stats().Rescans)
}

func TestEmptyOuterMatchesEverything(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, `<html><head><style>:has(> .badge) { outline: 1px }</style></head>
	<body><div id="d"><span class="badge"></span></div><p id="p"></p></body></html>`)
	e := inlineEngine(t, doc)
	require.NoError(t, e.Start(context.Background()))
	m := marker(t, e, "", 0)
	assert.True(t, doc.HasClass(first(t, doc, "#d"), m))
	assert.False(t, doc.HasClass(first(t, doc, "body"), m))
	assert.False(t, doc.HasClass(first(t, doc, "#p"), m))
}

const formPage = `<html><body>
<form id="f1"><fieldset id="s1"><input id="i1"></fieldset></form>
<form id="f2"><input id="i2" class="invalid"></form>
</body></html>`

func TestEventUpdatesAncestorsOnly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, formPage)
	reg := alias.NewRegistry()
	form := reg.Add("form", "input.invalid")
	set := reg.Add("fieldset", "input.invalid")
	e := New(doc, reg)
	e.Bind(Bindings{"input": Parents})
	// engine is not started: class changes go unnoticed
	i1 := first(t, doc, "#i1")
	doc.AddClass(i1, "invalid")
	require.NoError(t, doc.Dispatch("input", i1))
	assert.True(t, doc.HasClass(first(t, doc, "#f1"), form.Marker))
	assert.True(t, doc.HasClass(first(t, doc, "#s1"), set.Marker))
	assert.False(t, doc.HasClass(first(t, doc, "#f2"), form.Marker), "#f2 is not an ancestor")
	assert.Equal(t, 1, e.Stats().Events)
}

func TestEventTimeStampGuard(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, formPage)
	reg := alias.NewRegistry()
	a1 := reg.Add("form", "input.invalid")
	a2 := reg.Add("#f2", "input")
	e := New(doc, reg)
	ev := doc.NewEvent("focus", first(t, doc, "#i2"))
	require.NoError(t, e.HandleEvent(ev))
	f2 := first(t, doc, "#f2")
	// both outer selectors matching #f2 have been evaluated
	assert.True(t, doc.HasClass(f2, a1.Marker))
	assert.True(t, doc.HasClass(f2, a2.Marker))
	n := e.Stats().Evaluations
	assert.Equal(t, 2, n)
	require.NoError(t, e.HandleEvent(ev)) // same time stamp
	assert.Equal(t, n, e.Stats().Evaluations)
	require.NoError(t, e.HandleEvent(doc.NewEvent("focus", ev.Target)))
	assert.Equal(t, 2*n, e.Stats().Evaluations)
}

func TestRadioGroup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, `<html><body><form>
	<label id="l1"><input type="radio" name="size" id="r1" checked> S</label>
	<label id="l2"><input type="radio" name="size" id="r2"> M</label>
	<label id="l3"><input type="radio" name="other" id="r3" checked> X</label>
	</form></body></html>`)
	reg := alias.NewRegistry()
	a := reg.Add("label", "input:checked")
	e := New(doc, reg)
	e.Bind(DefaultBindings())
	require.NoError(t, e.FullRescan(context.Background()))
	l1, l2, l3 := first(t, doc, "#l1"), first(t, doc, "#l2"), first(t, doc, "#l3")
	require.True(t, doc.HasClass(l1, a.Marker))
	r2 := first(t, doc, "#r2")
	doc.SetChecked(r2, true) // un-checks r1, unobserved
	require.NoError(t, doc.Dispatch("change", r2))
	assert.False(t, doc.HasClass(l1, a.Marker), "expected r1's label to lose the marker")
	assert.True(t, doc.HasClass(l2, a.Marker))
	assert.True(t, doc.HasClass(l3, a.Marker))
	assert.Equal(t, 2, e.Stats().Events) // r2 and r1; r3 is not in the group
}

func TestBadSelectorDoesNotStopOthers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, cardPage)
	reg := alias.NewRegistry()
	good := reg.Add(".card", ".badge")
	reg.Add(".card", "[[broken")
	reg.Add("div[", ".badge")
	e := New(doc, reg)
	err := e.FullRescan(context.Background())
	require.Error(t, err)
	var serr *dom.SelectorError
	assert.True(t, errors.As(err, &serr))
	assert.True(t, doc.HasClass(first(t, doc, "#c1"), good.Marker))
}

func TestFailedFetchIsRetried(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, `<html><head><link rel="stylesheet" href="card.css"></head><body>
	<div class="card"><span class="badge"></span></div></body></html>`)
	fetcher := stylesheet.MapFetcher{}
	var reported error
	doc.SetErrorHandler(func(err error) { reported = err })
	e := New(doc, nil, WithLoader(stylesheet.NewLoader(doc, nil, fetcher)))
	err := e.Start(context.Background())
	assert.True(t, errors.Is(err, stylesheet.ErrNotFound))
	assert.Equal(t, 0, e.Registry().Len())
	fetcher["card.css"] = ".card:has(.badge) { color: red }"
	doc.SetAttribute(first(t, doc, "body"), "data-touched", "1") // triggers rescan
	assert.NoError(t, reported)
	require.Equal(t, 1, e.Registry().Len())
	assert.True(t, doc.HasClass(first(t, doc, "div.card"), marker(t, e, ".card", 0)))
}

func TestWatcherSuspensionsNest(t *testing.T) {
	doc := parse(t, cardPage)
	calls := 0
	w := NewWatcher(doc, func([]w3cdom.MutationRecord) error { calls++; return nil })
	body := first(t, doc, "body")
	doc.SetAttribute(body, "a", "1")
	w.On()
	doc.SetAttribute(body, "a", "2")
	outer := w.Suspend()
	inner := w.Suspend()
	doc.SetAttribute(body, "a", "3")
	inner()
	inner() // no-op
	doc.SetAttribute(body, "a", "4")
	outer()
	doc.SetAttribute(body, "a", "5")
	w.Off()
	doc.SetAttribute(body, "a", "6")
	assert.Equal(t, 2, calls)
	assert.False(t, w.IsOn())
}

func TestParseBinding(t *testing.T) {
	for _, b := range []Binding{Parents, Group} {
		parsed, err := ParseBinding(b.String())
		assert.NoError(t, err)
		assert.Equal(t, b, parsed)
	}
	_, err := ParseBinding("siblings")
	assert.Error(t, err)
	assert.Equal(t, Group, DefaultBindings()["change"])
}

func TestStopEndsRescans(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, cardPage)
	e := inlineEngine(t, doc)
	require.NoError(t, e.Start(context.Background()))
	m := marker(t, e, ".card", 0)
	e.Stop()
	assert.False(t, e.Watcher().IsOn())
	rescans := e.Stats().Rescans
	doc.RemoveChild(first(t, doc, ".badge"))
	assert.Equal(t, rescans, e.Stats().Rescans)
	assert.True(t, doc.HasClass(first(t, doc, "#c1"), m), "expected stale marker after Stop")
}

const chainPage = `<html><head>
<style>div:has(.a):has(.b) { color: red }</style>
</head><body>
<div id="x"><p><i class="a"></i><i class="b"></i></p></div>
</body></html>`

func chainMarkers(t *testing.T, e *Engine) (string, string) {
	m1 := marker(t, e, "div", 0)
	m2 := marker(t, e, "div."+m1, 0)
	return m1, m2
}

func TestChainedClausesLoseStaleMarkers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, chainPage)
	e := inlineEngine(t, doc)
	require.NoError(t, e.Start(context.Background()))
	m1, m2 := chainMarkers(t, e)
	x := first(t, doc, "#x")
	require.True(t, doc.HasClass(x, m1))
	require.True(t, doc.HasClass(x, m2))
	doc.RemoveChild(first(t, doc, ".a")) // triggers rescan
	assert.False(t, doc.HasClass(x, m1))
	assert.False(t, doc.HasClass(x, m2), "expected second marker to go with the first")
}

func TestEventClearsStaleChainedMarker(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.engine")
	defer teardown()
	//
	doc := parse(t, chainPage)
	e := inlineEngine(t, doc)
	require.NoError(t, e.FullRescan(context.Background())) // watcher stays off
	m1, m2 := chainMarkers(t, e)
	x := first(t, doc, "#x")
	require.True(t, doc.HasClass(x, m2))
	a := first(t, doc, ".a")
	doc.RemoveClass(a, "a")
	require.NoError(t, e.HandleEvent(doc.NewEvent("input", a)))
	assert.False(t, doc.HasClass(x, m1))
	assert.False(t, doc.HasClass(x, m2))
}
