/*
Package rewrite replaces relational pseudo-classes in CSS text by marker classes.

Overview

A stylesheet like

    ul, .card:has(> img.badge) { border: 1px solid red; }

is rewritten to

    ul, .card.q1kz3x0a { border: 1px solid red; }

and the alias (".card", "> img.badge", "q1kz3x0a") is recorded in an
alias.Registry. Toggling the marker class on elements matching ".card" is the
business of package engine.

The rewriter is a single-pass scanner. It does not parse CSS; it tracks just
enough structure to tell selector preludes from declaration blocks and at-rule
preludes: parenthesis depth, a stack of open blocks, and whether it is inside
a pseudo-class name or a relational clause. Comments and quoted strings are
skipped as opaque spans. Everything else is copied verbatim.

Malformed CSS is not reported. The worst outcome is a relational clause which
is left untouched.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package rewrite

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'haspoly.rewrite'.
func tracer() tracing.Trace {
	return tracing.Select("haspoly.rewrite")
}
