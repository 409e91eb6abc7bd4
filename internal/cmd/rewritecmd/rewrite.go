// Package rewritecmd provides the rewrite command.
package rewritecmd

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

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/npillmayer/haspoly/alias"
	"github.com/npillmayer/haspoly/rewrite"
)

type rewriteOptions struct {
	aliases bool
	noColor bool
}

// NewCmdRewrite creates the rewrite command.
func NewCmdRewrite() *cobra.Command {
	opts := &rewriteOptions{}

	cmd := &cobra.Command{
		Use:   "rewrite [FILE]",
		Short: "Rewrite :has() clauses of a stylesheet",
		Long: `Read a stylesheet from FILE (or standard input, if FILE is missing or "-")
and print it with every :has() clause replaced by a marker class.`,
		Example: `  # Rewrite a stylesheet
  haspoly rewrite menu.css

  # Show the aliases as well
  cat menu.css | haspoly rewrite --aliases`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runRewrite(opts, in, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&opts.aliases, "aliases", "a", false, "print the alias registry after the stylesheet")

	return cmd
}

func runRewrite(opts *rewriteOptions, in io.Reader, out io.Writer) error {
	if opts.noColor {
		color.NoColor = true
	}
	css, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read stylesheet: %w", err)
	}
	reg := alias.NewRegistry()
	text, found := rewrite.Rewrite(string(css), reg)
	fmt.Fprint(out, text)
	if !opts.aliases {
		return nil
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	fmt.Fprintln(out)
	_, _ = bold.Fprintf(out, "%d alias(es)\n", len(found))
	if len(found) == 0 {
		_, _ = dim.Fprintln(out, "(none)")
		return nil
	}
	fmt.Fprint(out, reg.String())
	return nil
}
