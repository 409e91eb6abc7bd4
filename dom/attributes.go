package dom

import (
	"strings"

	"github.com/npillmayer/haspoly/dom/w3cdom"
	"golang.org/x/net/html"
)

// Attribute returns the value of attribute key of n.
func (doc *Document) Attribute(n *html.Node, key string) (string, bool) {
	return Attr(n, key)
}

// Attr returns the value of attribute key of n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttribute sets attribute key of element n to value.
func (doc *Document) SetAttribute(n *html.Node, key, value string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	key = strings.ToLower(key)
	found := false
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			found = true
			break
		}
	}
	if !found {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
	}
	doc.notify(w3cdom.MutationRecord{Kind: w3cdom.AttributeChange, Target: n, Attribute: key})
}

// RemoveAttribute removes attribute key from element n. Removing an attribute
// which is not present is a no-op.
func (doc *Document) RemoveAttribute(n *html.Node, key string) {
	if n == nil {
		return
	}
	key = strings.ToLower(key)
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			doc.notify(w3cdom.MutationRecord{Kind: w3cdom.AttributeChange, Target: n, Attribute: key})
			return
		}
	}
}

// --- Class list ------------------------------------------------------------

// Classes returns the class names of n.
func Classes(n *html.Node) []string {
	c, _ := Attr(n, "class")
	return strings.Fields(c)
}

// HasClass checks if n carries class.
func (doc *Document) HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds class to n. If n already carries the class, the document is
// left untouched.
func (doc *Document) AddClass(n *html.Node, class string) {
	if class == "" || doc.HasClass(n, class) {
		return
	}
	doc.SetAttribute(n, "class", strings.Join(append(Classes(n), class), " "))
}

// RemoveClass removes class from n. If n does not carry the class, the
// document is left untouched.
func (doc *Document) RemoveClass(n *html.Node, class string) {
	if !doc.HasClass(n, class) {
		return
	}
	classes := Classes(n)
	kept := classes[:0]
	for _, c := range classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	doc.SetAttribute(n, "class", strings.Join(kept, " "))
}

// ToggleClass adds class to n if on is set, removes it otherwise.
func (doc *Document) ToggleClass(n *html.Node, class string, on bool) {
	if on {
		doc.AddClass(n, class)
	} else {
		doc.RemoveClass(n, class)
	}
}

// --- Form state ------------------------------------------------------------

// SetChecked sets or clears the checked state of an input element. Checking a
// radio button un-checks every other radio button of the same name.
func (doc *Document) SetChecked(n *html.Node, on bool) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	if !on {
		doc.RemoveAttribute(n, "checked")
		return
	}
	typ, _ := Attr(n, "type")
	name, _ := Attr(n, "name")
	if strings.EqualFold(typ, "radio") && name != "" {
		for _, r := range RadioGroup(doc.root, name) {
			if r != n {
				doc.RemoveAttribute(r, "checked")
			}
		}
	}
	doc.SetAttribute(n, "checked", "")
}

// RadioGroup returns all radio buttons with a given name below root.
func RadioGroup(root *html.Node, name string) []*html.Node {
	var group []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.Data == "input" {
				typ, _ := Attr(c, "type")
				if nm, ok := Attr(c, "name"); ok && nm == name && strings.EqualFold(typ, "radio") {
					group = append(group, c)
				}
			}
			walk(c)
		}
	}
	walk(root)
	return group
}
