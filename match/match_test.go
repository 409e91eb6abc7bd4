package match

import (
	"errors"
	"testing"

	"github.com/npillmayer/haspoly/dom"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"golang.org/x/net/html"
)

const page = `<html><body>
<div id="a" class="card"><p><span class="badge">new</span></p></div>
<div id="b" class="card"><p>no badge</p></div>
<div id="c" class="badge"><em>badge itself</em></div>
<ul id="d"><li><img></li></ul>
</body></html>`

func load(t *testing.T) *dom.Document {
	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("cannot parse test page: %v", err)
	}
	return doc
}

func byID(t *testing.T, doc *dom.Document, id string) *html.Node {
	n, err := doc.QueryFirst(nil, "#"+id)
	if err != nil || n == nil {
		t.Fatalf("element #%s not found", id)
	}
	return n
}

func testers(doc *dom.Document) map[string]Tester {
	return map[string]Tester{
		"scoped": NewScoped(doc),
		"native": NewNative(doc),
	}
}

func TestDescendantMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.match")
	defer teardown()
	//
	doc := load(t)
	for name, tester := range testers(doc) {
		ok, err := tester.Matches(byID(t, doc, "a"), ".badge")
		if err != nil || !ok {
			t.Errorf("%s: expected #a to have a .badge descendant, hasn't (err=%v)", name, err)
		}
		ok, err = tester.Matches(byID(t, doc, "b"), ".badge")
		if err != nil || ok {
			t.Errorf("%s: expected #b to have no .badge descendant, has (err=%v)", name, err)
		}
		ok, _ = tester.Matches(byID(t, doc, "a"), "p > span")
		if !ok {
			t.Errorf("%s: expected #a to match compound inner selector 'p > span', doesn't", name)
		}
	}
}

func TestElementItselfDoesNotCount(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.match")
	defer teardown()
	//
	doc := load(t)
	for name, tester := range testers(doc) {
		ok, err := tester.Matches(byID(t, doc, "c"), ".badge")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if ok {
			t.Errorf("%s: expected .badge element itself not to satisfy :has(.badge)", name)
		}
	}
}

func TestRelativeInnerSelector(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.match")
	defer teardown()
	//
	doc := load(t)
	for name, tester := range testers(doc) {
		if ok, err := tester.Matches(byID(t, doc, "d"), "> li"); err != nil || !ok {
			t.Errorf("%s: expected ul to have a child li (err=%v)", name, err)
		}
		if ok, _ := tester.Matches(byID(t, doc, "d"), "> img"); ok {
			t.Errorf("%s: expected img not to be a child of ul", name)
		}
	}
}

func TestScopeAttributeIsRemoved(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.match")
	defer teardown()
	//
	doc := load(t)
	el := byID(t, doc, "a")
	tester := NewScoped(doc)
	tester.Matches(el, ".badge")
	tester.Matches(el, "[[broken")
	for _, a := range el.Attr {
		if a.Key == ScopeAttr {
			t.Errorf("expected scoping attribute to be removed, found %q", a.Key)
		}
	}
}

func TestSelectorErrorIsReturned(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.match")
	defer teardown()
	//
	doc := load(t)
	for name, tester := range testers(doc) {
		ok, err := tester.Matches(byID(t, doc, "a"), "[[broken")
		if err == nil {
			t.Errorf("%s: expected a selector error, got none", name)
		}
		var serr *dom.SelectorError
		if !errors.As(err, &serr) {
			t.Errorf("%s: expected error to be a *dom.SelectorError, is %T", name, err)
		}
		if ok {
			t.Errorf("%s: expected failed test to report no match", name)
		}
	}
}

func TestNonElementsNeverMatch(t *testing.T) {
	doc := load(t)
	text := byID(t, doc, "a").FirstChild.FirstChild.FirstChild // text "new"
	for name, tester := range testers(doc) {
		if ok, err := tester.Matches(nil, "p"); ok || err != nil {
			t.Errorf("%s: expected nil node not to match", name)
		}
		if ok, err := tester.Matches(text, "p"); ok || err != nil {
			t.Errorf("%s: expected text node not to match", name)
		}
	}
}

// countingDoc records the selector texts queried through it.
type countingDoc struct {
	*dom.Document
	selectors map[string]int
}

func (d *countingDoc) QueryFirst(ctx *html.Node, selector string) (*html.Node, error) {
	d.selectors[selector]++
	return d.Document.QueryFirst(ctx, selector)
}

func TestScopedQueriesReuseSelectorText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.match")
	defer teardown()
	//
	doc := &countingDoc{Document: load(t), selectors: make(map[string]int)}
	tester := NewScoped(doc)
	for i := 0; i < 10; i++ {
		for _, id := range []string{"a", "b", "c"} {
			tester.Matches(byID(t, doc.Document, id), ".badge")
		}
	}
	if len(doc.selectors) != 1 {
		t.Errorf("expected a single scoped selector text, have %d: %v", len(doc.selectors), doc.selectors)
	}
	if doc.selectors["["+ScopeAttr+"] .badge"] != 30 {
		t.Errorf("expected 30 queries for '[%s] .badge', have %v", ScopeAttr, doc.selectors)
	}
}
