package dom

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/haspoly/dom/w3cdom"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const page = `<html><head><title>Test</title></head><body>
<div id="main" class="card wide"><p>Hello <b>World</b></p></div>
<form>
  <input id="r1" type="radio" name="size" checked>
  <input id="r2" type="radio" name="size">
  <input id="r3" type="radio" name="color">
</form>
</body></html>`

func load(t *testing.T) *Document {
	doc, err := ParseString(page)
	require.NoError(t, err)
	return doc
}

func byID(t *testing.T, doc *Document, id string) *html.Node {
	n, err := doc.QueryFirst(nil, "#"+id)
	require.NoError(t, err)
	require.NotNil(t, n, "element #%s", id)
	return n
}

func TestNilTree(t *testing.T) {
	if _, err := NewDocument(nil); err != ErrNoDocument {
		t.Errorf("expected ErrNoDocument for nil parse tree, got %v", err)
	}
}

func TestQueries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.dom")
	defer teardown()
	//
	doc := load(t)
	if el := doc.DocumentElement(); el == nil || el.Data != "html" {
		t.Errorf("expected document element to be <html>, is %v", el)
	}
	inputs, err := doc.QueryAll(nil, "input[type=radio]")
	require.NoError(t, err)
	assert.Len(t, inputs, 3)
	main := byID(t, doc, "main")
	b, _ := doc.QueryFirst(main, "p > b")
	if b == nil || TextContent(b) != "World" {
		t.Errorf("expected to find <b>World</b> inside #main, found %v", b)
	}
	// context node itself is not a candidate
	self, _ := doc.QueryFirst(main, ".card")
	assert.Nil(t, self)
	ok, err := doc.Matches(main, "div.card.wide")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Hello World", TextContent(main))
}

func TestSelectorError(t *testing.T) {
	doc := load(t)
	_, err := doc.QueryAll(nil, "div[")
	var serr *SelectorError
	if !errors.As(err, &serr) {
		t.Fatalf("expected a *SelectorError, got %v", err)
	}
	if serr.Selector != "div[" {
		t.Errorf("expected error to name selector 'div[', names %q", serr.Selector)
	}
}

func TestClassList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.dom")
	defer teardown()
	//
	doc := load(t)
	main := byID(t, doc, "main")
	doc.AddClass(main, "x1")
	assert.Equal(t, []string{"card", "wide", "x1"}, Classes(main))
	doc.ToggleClass(main, "wide", false)
	assert.Equal(t, []string{"card", "x1"}, Classes(main))
	assert.True(t, doc.HasClass(main, "card"))
	assert.False(t, doc.HasClass(main, "wide"))
	doc.RemoveClass(main, "card")
	doc.RemoveClass(main, "x1")
	v, ok := doc.Attribute(main, "class")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestMutationRecords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.dom")
	defer teardown()
	//
	doc := load(t)
	var records []w3cdom.MutationRecord
	sub := doc.Observe(func(recs []w3cdom.MutationRecord) error {
		records = append(records, recs...)
		return nil
	})
	main := byID(t, doc, "main")
	doc.AddClass(main, "quiet") // not connected yet
	if len(records) != 0 {
		t.Fatalf("expected no records before Connect, have %d", len(records))
	}
	sub.Connect()
	doc.AddClass(main, "loud")
	doc.AddClass(main, "loud") // no-op
	p := doc.CreateElement("P")
	doc.AppendChild(main, p)
	doc.SetText(p, "more")
	doc.RemoveChild(p)
	doc.RemoveAttribute(main, "no-such-attribute") // no-op
	sub.Disconnect()
	doc.RemoveClass(main, "loud")
	kinds := make([]w3cdom.MutationKind, len(records))
	for i, r := range records {
		kinds[i] = r.Kind
	}
	expected := []w3cdom.MutationKind{
		w3cdom.AttributeChange, w3cdom.ChildList, w3cdom.ChildList, w3cdom.ChildList,
	}
	assert.Equal(t, expected, kinds)
	assert.Equal(t, "class", records[0].Attribute)
	assert.Equal(t, "p", p.Data)
}

func TestCallbackErrorsGoToHandler(t *testing.T) {
	doc := load(t)
	var reported error
	doc.SetErrorHandler(func(err error) { reported = err })
	boom := errors.New("boom")
	doc.Observe(func([]w3cdom.MutationRecord) error { return boom }).Connect()
	doc.SetAttribute(byID(t, doc, "main"), "data-x", "1")
	if reported != boom {
		t.Errorf("expected callback error to be reported, is %v", reported)
	}
}

func TestEvents(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.dom")
	defer teardown()
	//
	doc := load(t)
	var stamps []uint64
	doc.AddEventListener("click", func(ev *w3cdom.Event) error {
		stamps = append(stamps, ev.TimeStamp)
		return errors.New("first")
	})
	doc.AddEventListener("click", func(ev *w3cdom.Event) error {
		stamps = append(stamps, ev.TimeStamp)
		return errors.New("second")
	})
	err := doc.Dispatch("click", byID(t, doc, "main"))
	if err == nil || !strings.Contains(err.Error(), "first") || !strings.Contains(err.Error(), "second") {
		t.Errorf("expected both listener errors to be returned, got %v", err)
	}
	doc.Dispatch("click", nil)
	doc.Dispatch("keyup", nil) // nobody listens
	require.Len(t, stamps, 4)
	assert.Equal(t, stamps[0], stamps[1])
	assert.Less(t, stamps[1], stamps[2])
	ev := doc.NewEvent("click", nil)
	assert.Greater(t, ev.TimeStamp, stamps[3])
}

func TestRadioGroup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "haspoly.dom")
	defer teardown()
	//
	doc := load(t)
	r1, r2, r3 := byID(t, doc, "r1"), byID(t, doc, "r2"), byID(t, doc, "r3")
	doc.SetChecked(r3, true)
	doc.SetChecked(r2, true)
	_, c1 := Attr(r1, "checked")
	_, c2 := Attr(r2, "checked")
	_, c3 := Attr(r3, "checked")
	if c1 || !c2 || !c3 {
		t.Errorf("expected r2 and r3 checked, r1 not; have %v %v %v", c1, c2, c3)
	}
	assert.Len(t, RadioGroup(doc.Root(), "size"), 2)
	ok, _ := doc.Matches(r2, ":checked")
	assert.True(t, ok)
}

func TestReplaceChild(t *testing.T) {
	doc := load(t)
	main := byID(t, doc, "main")
	p := main.FirstChild
	div := doc.CreateElement("section")
	doc.ReplaceChild(div, p)
	if main.FirstChild != div || p.Parent != nil {
		t.Errorf("expected <section> to replace <p>")
	}
	if !strings.Contains(doc.String(), `<div id="main" class="card wide"><section></section></div>`) {
		t.Errorf("unexpected rendering %s", doc.String())
	}
}
