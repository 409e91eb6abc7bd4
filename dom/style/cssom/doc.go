/*
Package cssom provides an object model for stylesheets after rewriting.

Status

This is a very first draft. It is unstable and the API will change without
notice. Please be patient.

Overview

CSSOM is the "CSS Object Model", similar to the DOM for HTML. Rewritten
stylesheets contain marker classes in place of relational clauses, which
makes them consumable by any ordinary selector engine, e.g.
https://godoc.org/github.com/andybalholm/cascadia.

CSS handling is de-coupled by introducing appropriate interfaces
StyleSheet and Rule. A concrete implementation on top of
https://github.com/aymerick/douceur may be found in sub-package
douceuradapter.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package cssom

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'haspoly.cssom'.
func tracer() tracing.Trace {
	return tracing.Select("haspoly.cssom")
}
