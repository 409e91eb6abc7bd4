package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/haspoly/dom/w3cdom"
)

// Binding tells how the engine reacts to an event type.
type Binding uint8

// Reactions to events.
const (
	Parents Binding = iota // re-evaluate the ancestors of the event target
	Group                  // same for all members of the target's radio group
)

func (b Binding) String() string {
	switch b {
	case Parents:
		return "parents"
	case Group:
		return "group"
	}
	return fmt.Sprintf("Binding(%d)", uint8(b))
}

// ParseBinding reads a binding from its name.
func ParseBinding(s string) (Binding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "parents":
		return Parents, nil
	case "group":
		return Group, nil
	}
	return Parents, fmt.Errorf("unknown event binding %q", s)
}

// Bindings map event types to reactions.
type Bindings map[string]Binding

// DefaultBindings returns the bindings for the interaction events which may
// change the result of dynamic pseudo-classes (:focus, :hover, :active,
// :valid, :checked) used in inner selectors.
func DefaultBindings() Bindings {
	return Bindings{
		"blur":      Parents,
		"focus":     Parents,
		"input":     Parents,
		"mouseup":   Parents,
		"mousedown": Parents,
		"mouseout":  Parents,
		"mouseover": Parents,
		"change":    Group,
	}
}

// Types returns the bound event types, sorted.
func (b Bindings) Types() []string {
	types := make([]string, 0, len(b))
	for t := range b {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Bind registers document-level listeners for every event type in bindings.
// Binding the same event type twice makes the engine react twice, which is
// harmless but wasteful.
func (e *Engine) Bind(bindings Bindings) {
	for _, typ := range bindings.Types() {
		var l w3cdom.Listener
		switch bindings[typ] {
		case Group:
			l = e.HandleGroupedEvent
		default:
			l = e.HandleEvent
		}
		tracer().Debugf("binding event %q to %s", typ, bindings[typ])
		e.doc.AddEventListener(typ, l)
	}
}
