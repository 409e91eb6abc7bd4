/*
Package w3cdom defines interface types for the parts of a W3C Document Object
Model a relational-selector polyfill depends on.

See also https://www.w3schools.com/XML/dom_intro.asp

Status

Early draft: API may change frequently. Please stay patient.

Overview

Elements are represented by *html.Node throughout. A host document offers

    - selector queries, scoped to a subtree or the whole document
    - class and attribute manipulation of single elements
    - a subscription to structural changes, which may be switched on and off
    - dispatch of named events carrying a target and a monotonic time stamp

Package dom contains the default implementation.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package w3cdom

import (
	"golang.org/x/net/html"
)

// Querier matches CSS selectors against elements.
//
// A nil context node for QueryAll and QueryFirst denotes the whole document,
// including the root element. Otherwise only descendants of the context node
// are considered. Selector syntax errors are returned unaltered.
type Querier interface {
	QueryAll(ctx *html.Node, selector string) ([]*html.Node, error)
	QueryFirst(ctx *html.Node, selector string) (*html.Node, error)
	Matches(n *html.Node, selector string) (bool, error)
}

// ClassList manipulates the class attribute of elements.
type ClassList interface {
	HasClass(n *html.Node, class string) bool
	AddClass(n *html.Node, class string)
	RemoveClass(n *html.Node, class string)
	ToggleClass(n *html.Node, class string, on bool)
}

// Attributes manipulates arbitrary attributes of elements.
type Attributes interface {
	Attribute(n *html.Node, key string) (string, bool)
	SetAttribute(n *html.Node, key, value string)
	RemoveAttribute(n *html.Node, key string)
}

// Tree offers structural operations.
type Tree interface {
	Root() *html.Node
	CreateElement(tag string) *html.Node
	SetText(n *html.Node, text string)
	ReplaceChild(newChild, oldChild *html.Node)
}

// Observable delivers structural change notifications.
type Observable interface {
	Observe(cb MutationCallback) Subscription
}

// EventTarget dispatches events to listeners.
type EventTarget interface {
	AddEventListener(eventType string, l Listener)
	Dispatch(eventType string, target *html.Node) error
	DispatchEvent(ev *Event) error
}

// Document is the complete host interface.
type Document interface {
	Querier
	ClassList
	Attributes
	Tree
	Observable
	EventTarget
}

// --- Mutations -------------------------------------------------------------

// MutationKind classifies a mutation record.
type MutationKind uint8

// Kinds of mutations.
const (
	ChildList MutationKind = iota
	AttributeChange
	CharacterData
)

func (k MutationKind) String() string {
	switch k {
	case ChildList:
		return "childList"
	case AttributeChange:
		return "attributes"
	case CharacterData:
		return "characterData"
	}
	return "unknown"
}

// MutationRecord describes a single change of the document tree.
type MutationRecord struct {
	Kind      MutationKind
	Target    *html.Node // node which has been changed
	Attribute string     // name of changed attribute, if Kind is AttributeChange
}

// MutationCallback is called with the records of changes to a document.
type MutationCallback func(records []MutationRecord) error

// Subscription is a handle for a mutation observation. A subscription starts
// out disconnected.
type Subscription interface {
	Connect()
	Disconnect()
	Connected() bool
}

// --- Events ----------------------------------------------------------------

// Event is a discrete interaction event.
type Event struct {
	Type      string
	Target    *html.Node
	TimeStamp uint64 // monotonic per document
}

// Listener handles events.
type Listener func(ev *Event) error
