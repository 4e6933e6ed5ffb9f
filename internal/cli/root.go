package cli

import (
	"github.com/spf13/cobra"

	"github.com/jcolasacco/folio/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Folio serves a photo, audio and code portfolio",
		Long:         `Folio serves a personal portfolio site with a justified photo grid, an audio page and a list of code projects. It also prepares thumbnails and previews the grid layout in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: ./"+configFileName+" if present)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.thumbsCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
