/*
Package alias keeps track of relational selectors which have been replaced by
marker classes.

Overview

Every occurrence of a relational pseudo-class

    .card:has(.badge) { … }

is replaced in the stylesheet by a synthetic class, e.g. `.k1ab2c3`. The
registry remembers the triple (outer selector, inner selector, marker class)
so that an update engine may later toggle the marker class on all elements
matching the outer selector, depending on whether they currently have a
descendant matching the inner selector.

Aliases sharing an outer selector are grouped; the most recently registered
alias is listed first.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package alias

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'haspoly.alias'.
func tracer() tracing.Trace {
	return tracing.Select("haspoly.alias")
}
