/*
Package engine keeps marker classes in sync with the document.

An Engine owns the alias registry of a document. Every alias stands for a
relational clause `outer:has(inner)` which has been rewritten to
`outer.marker`. The engine sets class `marker` on every element matching
`outer` which has a descendant matching `inner`, and removes it from all
others. Three triggers exist:

    - FullRescan re-evaluates every alias against the whole document. It runs
      at start-up and whenever the document changes structurally.
    - HandleEvent re-evaluates the ancestors of an event target, for
      interaction events which change the state of a single element (focus,
      hover, input).
    - HandleGroupedEvent does the same for every member of a radio group.

The engine never observes its own writes: a Watcher around the mutation
subscription is suspended while the engine changes classes or attributes.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package engine

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'haspoly.engine'.
func tracer() tracing.Trace {
	return tracing.Select("haspoly.engine")
}
