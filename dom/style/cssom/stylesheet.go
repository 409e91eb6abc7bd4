package cssom

import "github.com/npillmayer/haspoly/dom/style"

// StyleSheet is an interface to abstract away a stylesheet-implementation.
// Clients will have to provide a concrete implementation of this interface
// (e.g., see package douceuradapter).
//
// See interface Rule.
type StyleSheet interface {
	AppendRules(StyleSheet) // append rules from another stylesheet
	Empty() bool            // does this stylesheet contain any rules?
	Rules() []Rule          // all the style rules of a stylesheet
}

// Rule is the type stylesheets consists of.
//
// See interface StyleSheet.
type Rule interface {
	Selector() string            // the prelude / selectors of the rule
	Properties() []string        // property keys, e.g. "margin-top"
	Value(string) style.Property // property value for key, e.g. "15px"
	IsImportant(string) bool     // is property key marked as important?
}

// Declare applies the declarations of a sequence of rules, in order.
func Declare(rules []Rule) *style.Declared {
	d := style.NewDeclared()
	for _, r := range rules {
		tracer().Debugf("applying rule %q", r.Selector())
		for _, key := range r.Properties() {
			d.Declare(key, r.Value(key), r.IsImportant(key))
		}
	}
	return d
}
