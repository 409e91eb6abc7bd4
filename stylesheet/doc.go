/*
Package stylesheet finds the stylesheets of a document, rewrites relational
clauses in them and puts the rewritten text back into the document.

External stylesheets (<link rel=stylesheet href=…>) are fetched
synchronously through a Fetcher and replaced by a <style> element carrying the
rewritten text. Embedded <style> elements are rewritten in place. Every
element handled is remembered as processed and will not be touched again; a
stylesheet which could not be fetched stays unprocessed and is tried again on
the next call.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package stylesheet

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'haspoly.stylesheet'.
func tracer() tracing.Trace {
	return tracing.Select("haspoly.stylesheet")
}
