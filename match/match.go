/*
Package match tests elements against relational selectors.

An element e matches the relational clause `:has(S)` if some descendant of e
(not e itself) matches S. Two strategies are provided:

    - Scoped marks e with a scoping attribute and queries "[attr] S" among
      e's descendants. It relies on nothing but plain selector queries.
    - Native hands ":has(S)" to the selector engine, which is possible as
      cascadia implements :has() itself.

The two strategies differ for inner selectors which reach outside of e, e.g.
"body p": Scoped requires the whole chain to lie within e. Native follows
CSS semantics, where only the subject has to be a descendant of e.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package match

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/npillmayer/haspoly/dom/w3cdom"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/net/html"
)

// tracer traces with key 'haspoly.match'.
func tracer() tracing.Trace {
	return tracing.Select("haspoly.match")
}

// Tester decides whether an element has a descendant matching a selector.
type Tester interface {
	Matches(el *html.Node, inner string) (bool, error)
}

// --- Scoped ----------------------------------------------------------------

// scopes is the counter for scoping tokens. It is independent of the
// counter for marker classes.
var scopes uint64

// scoping serializes scoped tests, so that at most one element carries
// ScopeAttr at any time. The selector text of a scoped query then depends on
// the inner selector only and stays in the document's selector cache.
var scoping sync.Mutex

// ScopeAttr is the temporary scoping attribute. Its value is a unique token
// per test.
const ScopeAttr = "_hs"

// Scoped is a Tester which scopes a plain selector query to the descendants
// of an element by temporarily attaching an attribute to it.
type Scoped struct {
	doc scopedDoc
}

type scopedDoc interface {
	w3cdom.Querier
	w3cdom.Attributes
}

// NewScoped creates a scoped tester for a document.
func NewScoped(doc w3cdom.Document) *Scoped {
	return &Scoped{doc: doc}
}

// Matches is part of interface Tester. The scoping attribute is removed on
// every path out of Matches.
func (s *Scoped) Matches(el *html.Node, inner string) (bool, error) {
	if el == nil || el.Type != html.ElementNode {
		return false, nil
	}
	scoping.Lock()
	defer scoping.Unlock()
	token := strconv.FormatUint(atomic.AddUint64(&scopes, 1), 36)
	s.doc.SetAttribute(el, ScopeAttr, token)
	defer s.doc.RemoveAttribute(el, ScopeAttr)
	found, err := s.doc.QueryFirst(el, "["+ScopeAttr+"] "+inner)
	if err != nil {
		tracer().Debugf("scoped query %s for %q failed: %v", token, inner, err)
		return false, err
	}
	return found != nil, nil
}

// --- Native ----------------------------------------------------------------

// Native is a Tester delegating to the selector engine's own :has().
// Relative inner selectors ("> img") are not understood by the selector
// engine; they are handed to a scoped tester.
type Native struct {
	doc    w3cdom.Querier
	scoped *Scoped
}

// NewNative creates a native tester for a document.
func NewNative(doc w3cdom.Document) *Native {
	return &Native{doc: doc, scoped: NewScoped(doc)}
}

// Matches is part of interface Tester.
func (n *Native) Matches(el *html.Node, inner string) (bool, error) {
	if el == nil || el.Type != html.ElementNode {
		return false, nil
	}
	if isRelative(inner) {
		return n.scoped.Matches(el, inner)
	}
	return n.doc.Matches(el, ":has("+inner+")")
}

func isRelative(sel string) bool {
	sel = strings.TrimSpace(sel)
	return sel != "" && strings.ContainsRune(">+~", rune(sel[0]))
}
