package dom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// SelectorError is returned for selectors the query engine cannot parse.
type SelectorError struct {
	Selector string
	Err      error
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("invalid selector %q: %v", e.Selector, e.Err)
}

func (e *SelectorError) Unwrap() error {
	return e.Err
}

// maxCachedSelectors bounds the selector cache.
const maxCachedSelectors = 1024

// Compile parses a selector group, caching the result.
func (doc *Document) Compile(selector string) (cascadia.Matcher, error) {
	if m, ok := doc.selectors[selector]; ok {
		return m, nil
	}
	m, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, &SelectorError{Selector: selector, Err: err}
	}
	if len(doc.selectors) >= maxCachedSelectors {
		doc.selectors = make(map[string]cascadia.Matcher)
	}
	doc.selectors[selector] = m
	return m, nil
}

// QueryAll returns all elements matching selector, in document order.
// If ctx is nil, the whole document is searched, otherwise the descendants
// of ctx.
func (doc *Document) QueryAll(ctx *html.Node, selector string) ([]*html.Node, error) {
	m, err := doc.Compile(selector)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = doc.root
	}
	return cascadia.QueryAll(ctx, m), nil
}

// QueryFirst returns the first element matching selector or nil.
// If ctx is nil, the whole document is searched, otherwise the descendants
// of ctx.
func (doc *Document) QueryFirst(ctx *html.Node, selector string) (*html.Node, error) {
	m, err := doc.Compile(selector)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = doc.root
	}
	return cascadia.Query(ctx, m), nil
}

// Matches checks whether a single element matches selector.
func (doc *Document) Matches(n *html.Node, selector string) (bool, error) {
	m, err := doc.Compile(selector)
	if err != nil {
		return false, err
	}
	return n != nil && m.Match(n), nil
}
