/*
Package style holds raw CSS property values and collects the declarations
which apply to an element.

There is no specificity computation: declarations are applied in the order
they are handed to a Declared map, with !important declarations winning over
normal ones. This is enough to inspect the effect of marker classes, not to
render a page.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer will return a tracer. We are tracing to 'haspoly.style'
func tracer() tracing.Trace {
	return tracing.Select("haspoly.style")
}

// Property is a raw value for a CSS property. For example, with
//
//     color: black
//
// a property value of "black" is set.
type Property string

// NullStyle is an empty property value.
const NullStyle Property = ""

func (p Property) String() string {
	return string(p)
}

// IsEmpty checks wether a property is empty, i.e. the null-string.
func (p Property) IsEmpty() bool {
	return p == ""
}

// KeyValue is a container for a style property.
type KeyValue struct {
	Key   string
	Value Property
}

// --- Declared values --------------------------------------------------

// Declared collects property values from a sequence of declarations.
// The zero value is not usable, use NewDeclared.
type Declared struct {
	values    map[string]Property
	important map[string]bool
}

// NewDeclared creates an empty set of declared values.
func NewDeclared() *Declared {
	return &Declared{
		values:    make(map[string]Property),
		important: make(map[string]bool),
	}
}

// Declare applies a single declaration. A later declaration overrides an
// earlier one of the same importance; normal declarations never override
// important ones. Compound properties are split into their parts. Empty
// values are ignored.
func (d *Declared) Declare(key string, value Property, important bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if value.IsEmpty() {
		tracer().Debugf("%s: ignoring empty value", key)
		return
	}
	if parts, err := SplitCompoundProperty(key, value); err == nil {
		for _, kv := range parts {
			d.Declare(kv.Key, kv.Value, important)
		}
		return
	}
	if d.important[key] && !important {
		tracer().Debugf("%s: %q loses against important declaration", key, value)
		return
	}
	d.values[key] = value
	d.important[key] = important
}

// Get returns the declared value for a property key.
func (d *Declared) Get(key string) (Property, bool) {
	if d == nil {
		return NullStyle, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Properties returns all declared values, sorted by key.
func (d *Declared) Properties() []KeyValue {
	if d == nil {
		return nil
	}
	kv := make([]KeyValue, 0, len(d.values))
	for k, v := range d.values {
		kv = append(kv, KeyValue{Key: k, Value: v})
	}
	sort.Slice(kv, func(i, j int) bool { return kv[i].Key < kv[j].Key })
	return kv
}

func (d *Declared) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, kv := range d.Properties() {
		if i > 0 {
			b.WriteString(";")
		}
		fmt.Fprintf(&b, " %s: %s", kv.Key, kv.Value)
		if d.important[kv.Key] {
			b.WriteString(" !important")
		}
	}
	b.WriteString(" }")
	return b.String()
}

// --- Compound properties ----------------------------------------------

// SplitCompoundProperty splits up a shortcut property into its
// individual (fine grained) style properties.
// Example:
//    SplitCompountProperty("padding", "3px")
// will return
//    "padding-top"    => "3px"
//    "padding-right"  => "3px"
//    "padding-bottom" => "3px"
//    "padding-left  " => "3px"
// For the logic behind this, refer to e.g.
// https://www.w3schools.com/css/css_padding.asp .
func SplitCompoundProperty(key string, value Property) ([]KeyValue, error) {
	fields := strings.Fields(value.String())
	switch key {
	case "margin":
		return feazeCompound4("margin", "", fourDirs, fields)
	case "padding":
		return feazeCompound4("padding", "", fourDirs, fields)
	case "border-color":
		return feazeCompound4("border", "color", fourDirs, fields)
	case "border-width":
		return feazeCompound4("border", "width", fourDirs, fields)
	case "border-style":
		return feazeCompound4("border", "style", fourDirs, fields)
	case "border-radius":
		return feazeCompound4("border", "radius", fourCorners, fields)
	}
	return nil, fmt.Errorf("not recognized as compound property: %s", key)
}

// CSS logic to distribute individual values from compound shortcuts is as
// follows: https://www.w3schools.com/css/css_border.asp
func feazeCompound4(pre string, suf string, dirs [4]string, fields []string) ([]KeyValue, error) {
	l := len(fields)
	if l == 0 || l > 4 {
		return nil, fmt.Errorf("expecting 1-4 values for %s", p(pre, suf, "*"))
	}
	r := make([]KeyValue, 4)
	r[0] = KeyValue{p(pre, suf, dirs[0]), Property(fields[0])}
	switch l {
	case 1:
		r[1] = KeyValue{p(pre, suf, dirs[1]), Property(fields[0])}
		r[2] = KeyValue{p(pre, suf, dirs[2]), Property(fields[0])}
		r[3] = KeyValue{p(pre, suf, dirs[3]), Property(fields[0])}
	case 2:
		r[1] = KeyValue{p(pre, suf, dirs[1]), Property(fields[1])}
		r[2] = KeyValue{p(pre, suf, dirs[2]), Property(fields[0])}
		r[3] = KeyValue{p(pre, suf, dirs[3]), Property(fields[1])}
	case 3:
		r[1] = KeyValue{p(pre, suf, dirs[1]), Property(fields[1])}
		r[2] = KeyValue{p(pre, suf, dirs[2]), Property(fields[2])}
		r[3] = KeyValue{p(pre, suf, dirs[3]), Property(fields[1])}
	default:
		r[1] = KeyValue{p(pre, suf, dirs[1]), Property(fields[1])}
		r[2] = KeyValue{p(pre, suf, dirs[2]), Property(fields[2])}
		r[3] = KeyValue{p(pre, suf, dirs[3]), Property(fields[3])}
	}
	return r, nil
}

var fourDirs = [4]string{"top", "right", "bottom", "left"}
var fourCorners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

func p(prefix string, suffix string, tag string) string {
	if suffix == "" {
		return prefix + "-" + tag
	}
	if prefix == "" {
		return tag + "-" + suffix
	}
	return prefix + "-" + tag + "-" + suffix
}
