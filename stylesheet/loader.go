package stylesheet

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"context"
	"fmt"
	"strings"

	"github.com/npillmayer/haspoly/alias"
	"github.com/npillmayer/haspoly/dom"
	"github.com/npillmayer/haspoly/dom/style"
	"github.com/npillmayer/haspoly/dom/style/cssom"
	"github.com/npillmayer/haspoly/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/haspoly/dom/w3cdom"
	"github.com/npillmayer/haspoly/rewrite"
	"go.uber.org/multierr"
	"golang.org/x/net/html"
)

// Selectors for stylesheet-bearing elements.
const (
	LinkSelector  = "link[rel~=stylesheet][href]"
	StyleSelector = "style"
)

// Sheet is a processed stylesheet.
type Sheet struct {
	Origin  *html.Node    // <style> element carrying the rewritten text
	Href    string        // locator, if the sheet has been fetched
	Text    string        // rewritten text
	Aliases []alias.Alias // aliases found in this sheet
	om      cssom.StyleSheet
}

// CSSOM returns the parsed stylesheet. Parsing happens on first use.
func (s *Sheet) CSSOM() (cssom.StyleSheet, error) {
	if s.om == nil {
		om, err := douceuradapter.Parse(s.Text)
		if err != nil {
			return nil, err
		}
		s.om = om
	}
	return s.om, nil
}

// Loader discovers, fetches and rewrites the stylesheets of a document.
type Loader struct {
	doc       w3cdom.Document
	fetcher   Fetcher
	rewriter  *rewrite.Rewriter
	processed map[*html.Node]bool
	sheets    map[*html.Node]*Sheet
}

// NewLoader creates a loader for a document. Aliases will be put into reg,
// or into a new registry if reg is nil. fetcher may be nil, if the document
// does not link to external stylesheets.
func NewLoader(doc w3cdom.Document, reg *alias.Registry, fetcher Fetcher) *Loader {
	if reg == nil {
		reg = alias.NewRegistry()
	}
	return &Loader{
		doc:       doc,
		fetcher:   fetcher,
		rewriter:  rewrite.New(reg),
		processed: make(map[*html.Node]bool),
		sheets:    make(map[*html.Node]*Sheet),
	}
}

// Registry returns the alias registry the loader puts new aliases into.
func (l *Loader) Registry() *alias.Registry {
	return l.rewriter.Registry()
}

// Processed tells if an element has been handled by the loader.
func (l *Loader) Processed(n *html.Node) bool {
	return l.processed[n]
}

// Load processes external stylesheets first, then embedded ones.
func (l *Loader) Load(ctx context.Context) error {
	err := l.LoadExternal(ctx)
	return multierr.Append(err, l.ParseInline())
}

// LoadExternal fetches every unprocessed linked stylesheet and replaces its
// <link> by a <style> element with the rewritten text. Fetch errors are
// collected; the links in question stay unprocessed.
func (l *Loader) LoadExternal(ctx context.Context) error {
	links, err := l.doc.QueryAll(nil, LinkSelector)
	if err != nil {
		return err
	}
	var errs error
	for _, link := range links {
		if l.processed[link] {
			continue
		}
		href, _ := l.doc.Attribute(link, "href")
		if l.fetcher == nil {
			errs = multierr.Append(errs, fmt.Errorf("loading %q: %w", href, ErrUnsupported))
			continue
		}
		css, err := l.fetcher.Fetch(ctx, href)
		if err != nil {
			tracer().Errorf("cannot load stylesheet %q: %v", href, err)
			errs = multierr.Append(errs, fmt.Errorf("loading %q: %w", href, err))
			continue
		}
		tracer().Infof("loaded stylesheet %q", href)
		text, aliases := l.rewriter.Rewrite(css)
		l.processed[link] = true
		st := l.replaceWithStyle(link, text)
		l.sheets[st] = &Sheet{Origin: st, Href: href, Text: text, Aliases: aliases}
	}
	return errs
}

// ParseInline rewrites every non-empty, unprocessed <style> element.
func (l *Loader) ParseInline() error {
	styles, err := l.doc.QueryAll(nil, StyleSelector)
	if err != nil {
		return err
	}
	for _, st := range styles {
		if l.processed[st] {
			continue
		}
		css := dom.TextContent(st)
		if strings.TrimSpace(css) == "" {
			continue
		}
		text, aliases := l.rewriter.Rewrite(css)
		l.processed[st] = true
		if len(aliases) > 0 {
			st = l.replaceWithStyle(st, text)
		}
		tracer().Debugf("embedded stylesheet: %d aliases", len(aliases))
		l.sheets[st] = &Sheet{Origin: st, Text: text, Aliases: aliases}
	}
	return nil
}

// replaceWithStyle puts a new <style> element with text in place of old.
// The media attribute is carried over.
func (l *Loader) replaceWithStyle(old *html.Node, text string) *html.Node {
	st := l.doc.CreateElement("style")
	if media, ok := l.doc.Attribute(old, "media"); ok {
		l.doc.SetAttribute(st, "media", media)
	}
	l.doc.SetText(st, text)
	l.processed[st] = true
	l.doc.ReplaceChild(st, old)
	return st
}

// Sheets returns the processed stylesheets which are still part of the
// document, in document order.
func (l *Loader) Sheets() []*Sheet {
	var sheets []*Sheet
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if s, ok := l.sheets[c]; ok {
				sheets = append(sheets, s)
			}
			walk(c)
		}
	}
	walk(l.doc.Root())
	return sheets
}

// MatchingRules returns the style rules of all processed stylesheets whose
// selectors match el, in document order. Rules with selectors the selector
// engine does not understand (e.g., pseudo-elements) are skipped.
func (l *Loader) MatchingRules(el *html.Node) ([]cssom.Rule, error) {
	var rules []cssom.Rule
	var errs error
	for _, s := range l.Sheets() {
		om, err := s.CSSOM()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, r := range om.Rules() {
			ok, err := l.doc.Matches(el, r.Selector())
			if err != nil {
				tracer().Debugf("skipping rule %q: %v", r.Selector(), err)
				continue
			}
			if ok {
				rules = append(rules, r)
			}
		}
	}
	return rules, errs
}

// Style returns the declared property values for el, as far as they come
// from processed stylesheets.
func (l *Loader) Style(el *html.Node) (*style.Declared, error) {
	rules, err := l.MatchingRules(el)
	return cssom.Declare(rules), err
}
