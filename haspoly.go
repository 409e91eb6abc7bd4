/*
Package haspoly emulates the CSS relational pseudo-class :has() for HTML
documents whose selector engine does not support it.

Stylesheets of a document are rewritten: every clause `outer:has(inner)`
becomes `outer.marker`, with a unique marker class per clause. An update
engine then keeps the marker classes of all elements in sync with the
document, reacting to structural changes and interaction events.

    doc, _ := dom.Parse(r)
    poly, err := haspoly.Install(ctx, doc, config.Default(), nil)
    …
    doc.Dispatch("mouseover", el) // marker classes are updated

Packages

    rewrite      scanner rewriting relational clauses
    alias        registry of outer selector / inner selector / marker triples
    match        tests for "has a descendant matching"
    engine       update engine and mutation watcher
    stylesheet   finding, fetching and replacing stylesheets
    dom          scriptable document over golang.org/x/net/html

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package haspoly

import (
	"context"

	"github.com/npillmayer/haspoly/config"
	"github.com/npillmayer/haspoly/dom/w3cdom"
	"github.com/npillmayer/haspoly/engine"
	"github.com/npillmayer/haspoly/match"
	"github.com/npillmayer/haspoly/stylesheet"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'haspoly'.
func tracer() tracing.Trace {
	return tracing.Select("haspoly")
}

// Polyfill is the set of components installed into a document.
type Polyfill struct {
	Engine *engine.Engine
	Loader *stylesheet.Loader
}

// Install wires stylesheet loading, relational matching and the update
// engine for a document, binds the configured events and performs the
// initial full rescan.
//
// If conf is nil, the default configuration is used. If fetcher is nil, a
// fetcher is created from the configuration.
//
// Errors from the initial rescan (e.g., stylesheets which could not be
// fetched) do not prevent installation: the polyfill is returned together
// with the error, and failed stylesheets will be tried again on the next
// rescan.
func Install(ctx context.Context, doc w3cdom.Document, conf *config.Config,
	fetcher stylesheet.Fetcher) (*Polyfill, error) {
	//
	if conf == nil {
		conf = config.Default()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	bindings, err := conf.Bindings()
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		if fetcher, err = conf.Fetcher(""); err != nil {
			return nil, err
		}
	}
	var tester match.Tester = match.NewScoped(doc)
	if conf.Matcher == config.Native {
		tester = match.NewNative(doc)
	}
	loader := stylesheet.NewLoader(doc, nil, fetcher)
	e := engine.New(doc, nil, engine.WithLoader(loader), engine.WithTester(tester))
	e.Bind(bindings)
	err = e.Start(ctx)
	tracer().Infof("polyfill installed: %d aliases, %d event types", e.Registry().Len(), len(bindings))
	return &Polyfill{Engine: e, Loader: loader}, err
}
