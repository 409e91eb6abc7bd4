// Package root provides the root command for the haspoly CLI.
package root

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"github.com/spf13/cobra"

	"github.com/npillmayer/haspoly/internal/cmd/render"
	"github.com/npillmayer/haspoly/internal/cmd/rewritecmd"
)

// Version is set at build time.
var Version = "dev"

// NewCmdRoot creates the root command for haspoly.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "haspoly",
		Short: "Emulate the CSS :has() pseudo-class for HTML documents",
		Long: `haspoly rewrites :has() clauses in stylesheets into marker classes
and keeps these classes up to date for a document.

Use 'haspoly rewrite' to inspect how a stylesheet is rewritten, and
'haspoly render' to apply the polyfill to an HTML file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (YAML)")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	cmd.AddCommand(rewritecmd.NewCmdRewrite())
	cmd.AddCommand(render.NewCmdRender())

	return cmd
}
