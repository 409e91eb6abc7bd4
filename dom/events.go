package dom

import (
	"github.com/npillmayer/haspoly/dom/w3cdom"
	"go.uber.org/multierr"
	"golang.org/x/net/html"
)

// AddEventListener registers a document-level listener for an event type.
// Listeners see every event of that type, regardless of the target, in the
// order of registration.
func (doc *Document) AddEventListener(eventType string, l w3cdom.Listener) {
	if l == nil {
		return
	}
	doc.listeners[eventType] = append(doc.listeners[eventType], l)
}

// NewEvent creates an event with a fresh time stamp.
func (doc *Document) NewEvent(eventType string, target *html.Node) *w3cdom.Event {
	doc.clock++
	return &w3cdom.Event{Type: eventType, Target: target, TimeStamp: doc.clock}
}

// Dispatch creates an event with a fresh time stamp and dispatches it.
func (doc *Document) Dispatch(eventType string, target *html.Node) error {
	return doc.DispatchEvent(doc.NewEvent(eventType, target))
}

// DispatchEvent hands ev to every listener for its type. A failing listener
// does not keep other listeners from seeing the event; all errors are
// returned combined.
func (doc *Document) DispatchEvent(ev *w3cdom.Event) error {
	if ev == nil {
		return nil
	}
	if ev.TimeStamp > doc.clock {
		doc.clock = ev.TimeStamp
	}
	var err error
	for _, l := range doc.listeners[ev.Type] {
		err = multierr.Append(err, l(ev))
	}
	return err
}
