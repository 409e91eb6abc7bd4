// Package render provides the render command.
package render

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/npillmayer/haspoly"
	"github.com/npillmayer/haspoly/config"
	"github.com/npillmayer/haspoly/dom"
	"github.com/npillmayer/haspoly/dom/domdbg"
)

type renderOptions struct {
	configPath string
	events     []string
	output     string
	dot        bool
	rules      string
	noColor    bool
}

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Apply the polyfill to an HTML file",
		Long: `Load an HTML file together with its stylesheets, rewrite :has() clauses,
set the marker classes and print the resulting document.

Linked stylesheets with relative locators are looked up in the directory
of FILE, unless the configuration names a URL to resolve them against.
Events given with --event are dispatched in order after installation.`,
		Example: `  # Render a page
  haspoly render page.html

  # Hover over the first menu entry, then write the result to a file
  haspoly render page.html --event 'mouseover=li > a' -o out.html

  # Show the declared style of list items
  haspoly render page.html --rules li

  # Draw the document with GraphViz
  haspoly render page.html --dot | dot -Tsvg > page.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			return runRender(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.events, "event", "e", nil, "dispatch an event, as type=selector (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the document to a file instead of standard output")
	cmd.Flags().BoolVar(&opts.dot, "dot", false, "print the document as a GraphViz digraph")
	cmd.Flags().StringVar(&opts.rules, "rules", "", "print matching rules and declared style for elements matching a selector")

	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions, path string) error {
	if opts.noColor {
		color.NoColor = true
	}
	yellow := color.New(color.FgYellow)
	warn := func(err error) {
		_, _ = yellow.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	conf, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := conf.SetupTracing(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	doc, err := dom.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	doc.SetErrorHandler(warn)

	fetcher, err := conf.Fetcher(filepath.Dir(path))
	if err != nil {
		return err
	}
	poly, err := haspoly.Install(cmd.Context(), doc, conf, fetcher)
	if poly == nil {
		return err
	}
	if err != nil {
		warn(err)
	}

	for _, ev := range opts.events {
		if err := dispatch(doc, ev); err != nil {
			warn(err)
		}
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		of, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer of.Close()
		out = of
	} else if opts.rules != "" {
		out = io.Discard
	}
	if opts.dot {
		err = domdbg.ToGraphViz(doc.Root(), out, poly.Engine.Registry())
	} else {
		err = doc.Render(out)
	}
	if err != nil {
		return err
	}

	if opts.rules != "" {
		return printRules(cmd.OutOrStdout(), doc, poly, opts.rules)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	var conf *config.Config
	if path == "" {
		conf = config.Default()
	} else {
		var err error
		if conf, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	conf.LoadFromEnv()
	return conf, conf.Validate()
}

// dispatch dispatches an event of the form type=selector to every element
// matching the selector.
func dispatch(doc *dom.Document, arg string) error {
	typ, sel, ok := strings.Cut(arg, "=")
	if !ok || typ == "" || sel == "" {
		return fmt.Errorf("event %q: expected type=selector", arg)
	}
	targets, err := doc.QueryAll(nil, sel)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("event %q: no element matches", arg)
	}
	for _, t := range targets {
		if err := doc.Dispatch(typ, t); err != nil {
			return err
		}
	}
	return nil
}

func printRules(w io.Writer, doc *dom.Document, poly *haspoly.Polyfill, sel string) error {
	elements, err := doc.QueryAll(nil, sel)
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	green := color.New(color.FgGreen)
	for _, el := range elements {
		_, _ = bold.Fprintln(w, label(el))
		rules, err := poly.Loader.MatchingRules(el)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			_, _ = dim.Fprintln(w, "  (no rules)")
			continue
		}
		for _, r := range rules {
			_, _ = dim.Fprintf(w, "  %s\n", r.Selector())
		}
		declared, err := poly.Loader.Style(el)
		if err != nil {
			return err
		}
		for _, kv := range declared.Properties() {
			_, _ = green.Fprintf(w, "    %s", kv.Key)
			fmt.Fprintf(w, ": %s\n", kv.Value)
		}
	}
	return nil
}

func label(n *html.Node) string {
	var b strings.Builder
	b.WriteString("<" + n.Data)
	if id, ok := dom.Attr(n, "id"); ok {
		fmt.Fprintf(&b, " id=%q", id)
	}
	if classes := dom.Classes(n); len(classes) > 0 {
		fmt.Fprintf(&b, " class=%q", strings.Join(classes, " "))
	}
	b.WriteString(">")
	return b.String()
}
