package dom

import (
	"github.com/npillmayer/haspoly/dom/w3cdom"
)

// subscription is a mutation observer registered with a document.
type subscription struct {
	doc       *Document
	callback  w3cdom.MutationCallback
	connected bool
}

var _ w3cdom.Subscription = &subscription{}

// Observe registers a mutation callback. The returned subscription is
// disconnected; clients have to call Connect() to start receiving records.
func (doc *Document) Observe(cb w3cdom.MutationCallback) w3cdom.Subscription {
	s := &subscription{doc: doc, callback: cb}
	doc.observers = append(doc.observers, s)
	return s
}

// Connect starts delivery of mutation records.
func (s *subscription) Connect() {
	s.connected = true
}

// Disconnect stops delivery of mutation records. Changes happening while
// disconnected are not delivered later on.
func (s *subscription) Disconnect() {
	s.connected = false
}

// Connected is true if the subscription currently receives mutation records.
func (s *subscription) Connected() bool {
	return s.connected
}

// notify delivers a mutation record to every connected subscription.
func (doc *Document) notify(rec w3cdom.MutationRecord) {
	if len(doc.observers) == 0 {
		return
	}
	observers := make([]*subscription, len(doc.observers))
	copy(observers, doc.observers)
	for _, s := range observers {
		if !s.connected || s.callback == nil {
			continue
		}
		tracer().Debugf("mutation %s on <%s>", rec.Kind, rec.Target.Data)
		doc.reportError(s.callback([]w3cdom.MutationRecord{rec}))
	}
}
