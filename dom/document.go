package dom

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/haspoly/dom/w3cdom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoDocument is returned when trying to wrap a nil parse tree.
var ErrNoDocument = errors.New("cannot create document from empty parse tree")

// Document is a scriptable HTML document.
type Document struct {
	root      *html.Node                  // document node of the parse tree
	selectors map[string]cascadia.Matcher // compiled selectors
	observers []*subscription             // registered mutation observers
	listeners map[string][]w3cdom.Listener
	clock     uint64 // last event time stamp
	onError   func(error)
}

var _ w3cdom.Document = &Document{}

// NewDocument wraps an HTML parse tree.
func NewDocument(root *html.Node) (*Document, error) {
	if root == nil {
		return nil, ErrNoDocument
	}
	return &Document{
		root:      root,
		selectors: make(map[string]cascadia.Matcher),
		listeners: make(map[string][]w3cdom.Listener),
		onError: func(err error) {
			tracer().Errorf("uncaught: %v", err)
		},
	}, nil
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(root)
}

// ParseString reads an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the document as HTML.
func (doc *Document) Render(w io.Writer) error {
	return html.Render(w, doc.root)
}

// String returns the rendered document.
func (doc *Document) String() string {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return "<!-- " + err.Error() + " -->"
	}
	return buf.String()
}

// Root returns the document node.
func (doc *Document) Root() *html.Node {
	return doc.root
}

// DocumentElement returns the root element, usually <html>.
func (doc *Document) DocumentElement() *html.Node {
	for c := doc.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// SetErrorHandler sets a function to receive errors which cannot be returned
// to a caller, i.e. errors from mutation callbacks.
func (doc *Document) SetErrorHandler(h func(error)) {
	if h != nil {
		doc.onError = h
	}
}

func (doc *Document) reportError(err error) {
	if err != nil {
		doc.onError(err)
	}
}

// --- Tree operations -------------------------------------------------------

// CreateElement creates a detached element node.
func (doc *Document) CreateElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// CreateTextNode creates a detached text node.
func (doc *Document) CreateTextNode(text string) *html.Node {
	return &html.Node{
		Type: html.TextNode,
		Data: text,
	}
}

// AppendChild appends a child to parent. A child which is still attached
// elsewhere is moved.
func (doc *Document) AppendChild(parent, child *html.Node) {
	if parent == nil || child == nil {
		return
	}
	doc.detach(child)
	parent.AppendChild(child)
	doc.notify(w3cdom.MutationRecord{Kind: w3cdom.ChildList, Target: parent})
}

// InsertBefore inserts child into parent before ref. If ref is nil, child is
// appended.
func (doc *Document) InsertBefore(parent, child, ref *html.Node) {
	if parent == nil || child == nil {
		return
	}
	doc.detach(child)
	parent.InsertBefore(child, ref)
	doc.notify(w3cdom.MutationRecord{Kind: w3cdom.ChildList, Target: parent})
}

// RemoveChild detaches n from its parent.
func (doc *Document) RemoveChild(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	parent := n.Parent
	parent.RemoveChild(n)
	doc.notify(w3cdom.MutationRecord{Kind: w3cdom.ChildList, Target: parent})
}

// ReplaceChild puts newChild in the place of oldChild.
func (doc *Document) ReplaceChild(newChild, oldChild *html.Node) {
	if newChild == nil || oldChild == nil || oldChild.Parent == nil {
		return
	}
	parent := oldChild.Parent
	doc.detach(newChild)
	parent.InsertBefore(newChild, oldChild)
	parent.RemoveChild(oldChild)
	doc.notify(w3cdom.MutationRecord{Kind: w3cdom.ChildList, Target: parent})
}

// SetText replaces all children of n by a single text node.
func (doc *Document) SetText(n *html.Node, text string) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		n.Data = text
		doc.notify(w3cdom.MutationRecord{Kind: w3cdom.CharacterData, Target: n})
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	if text != "" {
		n.AppendChild(doc.CreateTextNode(text))
	}
	doc.notify(w3cdom.MutationRecord{Kind: w3cdom.ChildList, Target: n})
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			} else {
				collect(c)
			}
		}
	}
	collect(n)
	return b.String()
}

// ParentElement returns the parent of n if it is an element, nil otherwise.
func ParentElement(n *html.Node) *html.Node {
	if n == nil || n.Parent == nil || n.Parent.Type != html.ElementNode {
		return nil
	}
	return n.Parent
}

func (doc *Document) detach(n *html.Node) {
	if n.Parent != nil {
		doc.RemoveChild(n)
	}
}
