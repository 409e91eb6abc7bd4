/*
Package domdbg implements helpers to debug a DOM tree.

Documents are drawn as GraphViz digraphs. Elements carrying a marker class
are highlighted, and the relational clauses behind their markers are attached
as records.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>


*/
package domdbg

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/npillmayer/haspoly/alias"
	"github.com/npillmayer/haspoly/dom"
	"golang.org/x/net/html"
)

// Parameters for GraphViz drawing.
type graphParamsType struct {
	Fontname  string
	NodeTmpl  *template.Template
	EdgeTmpl  *template.Template
	AliasTmpl *template.Template
	markers   map[string]alias.Alias
}

// ToGraphViz outputs a diagram for a DOM tree. The diagram is in
// GraphViz (DOT) format. Clients have to provide the root node of
// the DOM, a Writer, and an optional alias registry.
//
// If a registry is given, elements carrying marker classes from it are
// highlighted. Text nodes consisting of whitespace only are left out.
func ToGraphViz(root *html.Node, w io.Writer, reg *alias.Registry) error {
	tmpl, err := template.New("dom").Parse(graphHeadTmpl)
	if err != nil {
		return err
	}
	gparams := graphParamsType{Fontname: "Helvetica"}
	gparams.NodeTmpl = template.Must(template.New("domnode").Funcs(
		template.FuncMap{
			"shortstring": shortText,
		}).Parse(domNodeTmpl))
	gparams.EdgeTmpl = template.Must(template.New("domedge").Parse(domEdgeTmpl))
	gparams.AliasTmpl = template.Must(template.New("alias").Parse(aliasTmpl))
	gparams.markers = make(map[string]alias.Alias)
	for _, a := range reg.All() {
		gparams.markers[a.Marker] = a
	}
	if err = tmpl.Execute(w, gparams); err != nil {
		return err
	}
	dict := make(map[*html.Node]string, 4096)
	if err = nodes(root, w, dict, &gparams); err != nil {
		return err
	}
	_, err = w.Write([]byte("}\n"))
	return err
}

type node struct {
	N       *html.Node
	IsText  bool
	Name    string
	Label   string
	Markers []alias.Alias
}

func nodes(n *html.Node, w io.Writer, dict map[*html.Node]string, gparams *graphParamsType) error {
	if err := domNode(n, w, dict, gparams); err != nil {
		return err
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if skip(ch) {
			continue
		}
		if err := nodes(ch, w, dict, gparams); err != nil {
			return err
		}
		if err := domEdge(n, ch, w, dict, gparams); err != nil {
			return err
		}
	}
	return nil
}

func skip(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return strings.TrimSpace(n.Data) == ""
	case html.CommentNode, html.DoctypeNode:
		return true
	}
	return false
}

func domNode(n *html.Node, w io.Writer, dict map[*html.Node]string, gparams *graphParamsType) error {
	name := dict[n]
	if name == "" {
		l := len(dict) + 1
		name = fmt.Sprintf("node%05d", l)
		dict[n] = name
	}
	dn := &node{N: n, IsText: n.Type == html.TextNode, Name: name, Label: label(n)}
	for _, c := range dom.Classes(n) {
		if a, ok := gparams.markers[c]; ok {
			dn.Markers = append(dn.Markers, a)
		}
	}
	if err := gparams.NodeTmpl.Execute(w, dn); err != nil {
		return err
	}
	if len(dn.Markers) > 0 {
		return gparams.AliasTmpl.Execute(w, dn)
	}
	return nil
}

// label is the element name, followed by id and classes in selector
// notation.
func label(n *html.Node) string {
	switch n.Type {
	case html.DocumentNode:
		return "#document"
	case html.TextNode:
		return "#text"
	}
	var b strings.Builder
	b.WriteString(n.Data)
	if id, ok := dom.Attr(n, "id"); ok && id != "" {
		b.WriteString("#" + id)
	}
	for _, c := range dom.Classes(n) {
		b.WriteString("." + c)
	}
	return b.String()
}

type edge struct {
	N1, N2 node
}

func domEdge(n1 *html.Node, n2 *html.Node, w io.Writer, dict map[*html.Node]string,
	gparams *graphParamsType) error {
	//
	name1 := dict[n1]
	name2 := dict[n2]
	e := edge{node{N: n1, Name: name1}, node{N: n2, Name: name2}}
	return gparams.EdgeTmpl.Execute(w, e)
}

func shortText(n *html.Node) string {
	s := "\"\\\""
	if len(n.Data) > 10 {
		s += n.Data[:10] + "...\\\"\""
	} else {
		s += n.Data + "\\\"\""
	}
	s = strings.Replace(s, "\n", `\\n`, -1)
	s = strings.Replace(s, "\t", `\\t`, -1)
	s = strings.Replace(s, " ", "␣", -1)
	return s
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [fontname = "{{ .Fontname }}" fontsize=14] ;
   node [fontname = "{{ .Fontname }}" fontsize=14] ;
   edge [fontname = "{{ .Fontname }}" fontsize=14] ;
`

const domNodeTmpl = `{{ if .IsText }}
{{ .Name }}	[ label={{ shortstring .N }} shape=box style=filled fillcolor=grey95 fontname="Courier" fontsize=11.0 ] ;
{{ else if .Markers }}
{{ .Name }}	[ label={{ printf "%q" .Label }} shape=ellipse style=filled fillcolor=gold ] ;
{{ else }}
{{ .Name }}	[ label={{ printf "%q" .Label }} shape=ellipse style=filled fillcolor=lightblue3 ] ;
{{ end }}
`

const domEdgeTmpl = `{{ .N1.Name }} -> {{ .N2.Name }} [weight=1] ;
`

const aliasTmpl = `{{ .Name }}_has [ style="filled" penwidth=1 fillcolor="ivory3" shape="Mrecord" fontsize=12
    label=<<table border="0" cellborder="0" cellpadding="2" cellspacing="0" bgcolor="ivory3">
      <tr><td bgcolor="azure4" align="center" colspan="2"><font color="white">:has()</font></td></tr>
      {{ range .Markers }}
      <tr><td align="right">{{ .Marker }}:</td><td>{{ html .Inner }}</td></tr>
      {{ end }}
    </table>> ] ;
{{ .Name }} -> {{ .Name }}_has [dir=none weight=1 style="dashed"] ;
`
