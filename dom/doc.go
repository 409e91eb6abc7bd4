/*
Package dom provides a scriptable document on top of an HTML parse tree.

Status

Early draft: API may change frequently. Please stay patient.

Overview

A Document wraps the *html.Node tree produced by golang.org/x/net/html and
implements interface w3cdom.Document. It adds the things a browser would
provide to client scripts:

    - CSS selector queries, implemented with
      https://godoc.org/github.com/andybalholm/cascadia
    - class list and attribute manipulation
    - mutation observers
    - event listeners and event dispatch

All changes to the tree which should be visible to mutation observers have to
be performed through the Document. Changing *html.Node fields directly is
possible, but will go unnoticed.

Mutation records are delivered synchronously, one record per callback, in the
order the changes happen. Errors returned by mutation callbacks are handed to
the document's error handler, as there is no caller to return them to.

A Document is not safe for concurrent use. Like its counterpart in a browser
it is meant to be driven by a single event loop.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dom

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer will return a tracer. We are tracing to 'haspoly.dom'
func tracer() tracing.Trace {
	return tracing.Select("haspoly.dom")
}
