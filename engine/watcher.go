package engine

import (
	"github.com/npillmayer/haspoly/dom/w3cdom"
)

// Watcher switches a mutation subscription on and off. Suspensions nest:
// the subscription is re-connected when the outermost suspension ends, if
// the watcher is on at that time.
type Watcher struct {
	sub   w3cdom.Subscription
	on    bool
	depth int // nesting of suspensions
}

// NewWatcher subscribes cb to changes of a document. The watcher starts
// out switched off.
func NewWatcher(doc w3cdom.Observable, cb w3cdom.MutationCallback) *Watcher {
	return &Watcher{sub: doc.Observe(cb)}
}

// On starts watching.
func (w *Watcher) On() {
	w.on = true
	if w.depth == 0 {
		w.sub.Connect()
	}
}

// Off stops watching.
func (w *Watcher) Off() {
	w.on = false
	w.sub.Disconnect()
}

// IsOn tells if the watcher is switched on. A suspended watcher may be on
// without receiving mutation records.
func (w *Watcher) IsOn() bool {
	return w.on
}

// Suspend stops delivery of mutation records until the returned function is
// called. Use it as
//
//     defer w.Suspend()()
//
func (w *Watcher) Suspend() (resume func()) {
	w.depth++
	w.sub.Disconnect()
	done := false
	return func() {
		if done {
			return
		}
		done = true
		w.depth--
		if w.depth == 0 && w.on {
			w.sub.Connect()
		}
	}
}
