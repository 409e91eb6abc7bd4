package engine

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
	"github.com/npillmayer/haspoly/dom/w3cdom"
	"github.com/npillmayer/haspoly/match"
	"github.com/npillmayer/haspoly/stylesheet"
	"go.uber.org/multierr"
	"golang.org/x/net/html"
)

// Engine re-evaluates aliases and toggles marker classes.
type Engine struct {
	doc       w3cdom.Document
	registry  *alias.Registry
	tester    match.Tester
	loader    *stylesheet.Loader
	watcher   *Watcher
	ctx       context.Context     // context for rescans triggered by mutations
	lastStamp uint64              // time stamp of the event currently handled
	visited   map[*html.Node]bool // ancestors evaluated for lastStamp
	stats     Stats
}

// Stats counts the work an engine has done.
type Stats struct {
	Rescans     int // full rescans
	Events      int // handled events, including re-dispatches to group members
	Evaluations int // relational tests
	Toggles     int // marker classes set or removed
}

func (s Stats) String() string {
	return fmt.Sprintf("rescans=%d events=%d evaluations=%d toggles=%d",
		s.Rescans, s.Events, s.Evaluations, s.Toggles)
}

// Option configures an engine.
type Option func(*Engine)

// WithTester sets the relational match tester. The default is a
// match.Scoped tester for the engine's document.
func WithTester(t match.Tester) Option {
	return func(e *Engine) {
		if t != nil {
			e.tester = t
		}
	}
}

// WithLoader sets a stylesheet loader, which will be asked to process new
// stylesheets on every full rescan. Without a loader, aliases have to be put
// into the registry by other means.
func WithLoader(l *stylesheet.Loader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// New creates an engine for a document. If reg is nil, the registry of the
// loader is used (if a loader is configured) or a new registry is created.
func New(doc w3cdom.Document, reg *alias.Registry, opts ...Option) *Engine {
	e := &Engine{
		doc:     doc,
		visited: make(map[*html.Node]bool),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	switch {
	case reg != nil:
		e.registry = reg
	case e.loader != nil:
		e.registry = e.loader.Registry()
	default:
		e.registry = alias.NewRegistry()
	}
	if e.tester == nil {
		e.tester = match.NewScoped(doc)
	}
	e.watcher = NewWatcher(doc, e.onMutation)
	return e
}

// Registry returns the alias registry of the engine.
func (e *Engine) Registry() *alias.Registry {
	return e.registry
}

// Watcher returns the mutation watcher of the engine.
func (e *Engine) Watcher() *Watcher {
	return e.watcher
}

// Stats returns the work counters of the engine.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Start performs an initial full rescan and starts watching the document.
// ctx will be used for rescans triggered by document mutations. The watcher
// is switched on even if the rescan reports errors.
func (e *Engine) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	e.ctx = ctx
	err := e.FullRescan(ctx)
	e.watcher.On()
	return err
}

// Stop stops watching the document.
func (e *Engine) Stop() {
	e.watcher.Off()
}

func (e *Engine) onMutation(records []w3cdom.MutationRecord) error {
	tracer().Debugf("%d mutation(s) observed, rescanning", len(records))
	return e.FullRescan(e.ctx)
}

// FullRescan processes new stylesheets, then re-evaluates every alias for
// every element matching its outer selector. Elements which carry a marker
// but no longer match the outer selector lose the marker.
//
// Errors from loading stylesheets and from evaluating single aliases are
// collected and returned. A failing alias does not keep the others from
// being evaluated.
func (e *Engine) FullRescan(ctx context.Context) error {
	defer e.watcher.Suspend()()
	e.stats.Rescans++
	var errs error
	if e.loader != nil {
		errs = multierr.Append(errs, e.loader.Load(ctx))
	}
	for _, outer := range e.registry.Outers() {
		elements, err := e.doc.QueryAll(nil, contextSelector(outer))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		aliases := e.registry.Lookup(outer)
		for _, el := range elements {
			errs = multierr.Append(errs, e.update(el, aliases))
		}
		errs = multierr.Append(errs, e.clearStale(elements, aliases))
	}
	return errs
}

// clearStale removes the markers of aliases from every element outside of
// candidates. With chained clauses (outer selector "a.<marker>") an element
// may drop out of an outer selector's match set while still carrying its
// markers.
func (e *Engine) clearStale(candidates []*html.Node, aliases []alias.Alias) error {
	in := make(map[*html.Node]bool, len(candidates))
	for _, el := range candidates {
		in[el] = true
	}
	var errs error
	for _, a := range aliases {
		marked, err := e.doc.QueryAll(nil, "."+a.Marker)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, el := range marked {
			if !in[el] {
				e.unmark(el, a)
			}
		}
	}
	return errs
}

func (e *Engine) unmark(el *html.Node, a alias.Alias) {
	if e.doc.HasClass(el, a.Marker) {
		tracer().Debugf("<%s> no longer matches %q, removing .%s", el.Data, a.Outer, a.Marker)
		e.stats.Toggles++
		e.doc.ToggleClass(el, a.Marker, false)
	}
}

// HandleEvent re-evaluates the ancestors of the event's target. Each
// ancestor is evaluated at most once per event time stamp, for all the outer
// selectors it matches. Markers for outer selectors it does not match are
// removed.
func (e *Engine) HandleEvent(ev *w3cdom.Event) error {
	if ev == nil || ev.Target == nil {
		return nil
	}
	defer e.watcher.Suspend()()
	e.stats.Events++
	if ev.TimeStamp != e.lastStamp {
		e.lastStamp = ev.TimeStamp
		e.visited = make(map[*html.Node]bool)
	}
	tracer().Debugf("event %s @%d on <%s>", ev.Type, ev.TimeStamp, ev.Target.Data)
	outers := e.registry.Outers()
	var errs error
	for el := dom.ParentElement(ev.Target); el != nil; el = dom.ParentElement(el) {
		if e.visited[el] {
			continue
		}
		e.visited[el] = true
		for _, outer := range outers {
			ok, err := e.doc.Matches(el, contextSelector(outer))
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if !ok {
				for _, a := range e.registry.Lookup(outer) {
					e.unmark(el, a)
				}
				continue
			}
			errs = multierr.Append(errs, e.update(el, e.registry.Lookup(outer)))
		}
	}
	return errs
}

// HandleGroupedEvent handles an event for its target and, if the target is
// a named radio button, for every other radio button of that name in the
// document. All of them share the event's time stamp.
func (e *Engine) HandleGroupedEvent(ev *w3cdom.Event) error {
	if ev == nil || ev.Target == nil {
		return nil
	}
	err := e.HandleEvent(ev)
	name, ok := e.radioName(ev.Target)
	if !ok {
		return err
	}
	inputs, qerr := e.doc.QueryAll(nil, "input[name]")
	if qerr != nil {
		return multierr.Append(err, qerr)
	}
	for _, r := range inputs {
		if r == ev.Target {
			continue
		}
		if n, ok := e.radioName(r); ok && n == name {
			sibling := &w3cdom.Event{Type: ev.Type, Target: r, TimeStamp: ev.TimeStamp}
			err = multierr.Append(err, e.HandleEvent(sibling))
		}
	}
	return err
}

func (e *Engine) radioName(n *html.Node) (string, bool) {
	if n.Type != html.ElementNode || n.Data != "input" {
		return "", false
	}
	typ, _ := e.doc.Attribute(n, "type")
	name, _ := e.doc.Attribute(n, "name")
	return name, strings.EqualFold(typ, "radio") && name != ""
}

// update evaluates aliases for a single element and toggles the marker
// classes. Classes already in the right state are left alone.
func (e *Engine) update(el *html.Node, aliases []alias.Alias) error {
	var errs error
	for _, a := range aliases {
		e.stats.Evaluations++
		ok, err := e.tester.Matches(el, a.Inner)
		if err != nil {
			tracer().Errorf("cannot evaluate %s: %v", a, err)
			errs = multierr.Append(errs, fmt.Errorf("alias %s: %w", a.Marker, err))
			continue
		}
		if e.doc.HasClass(el, a.Marker) != ok {
			e.stats.Toggles++
			e.doc.ToggleClass(el, a.Marker, ok)
		}
	}
	return errs
}

// contextSelector is the selector for candidate elements of an outer
// selector. An empty outer selector stands for every element.
func contextSelector(outer string) string {
	if strings.TrimSpace(outer) == "" {
		return "*"
	}
	return outer
}
