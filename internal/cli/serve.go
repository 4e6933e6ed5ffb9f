package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcolasacco/folio/internal/server"
	"github.com/jcolasacco/folio/pkg/site"
)

// serveCommand creates the serve command that runs the portfolio site.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		public  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio site",
		Long: `Serve the portfolio site.

Photos are read from <public>/photos, thumbnails from <public>/photos/thumbs
and audio from <public>/music. Run 'folio thumbs' first so the grid loads
thumbnails instead of full-resolution images.

Image sizes, EXIF data and audio tags are cached in the configured backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, public, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")
	cmd.Flags().StringVarP(&public, "public", "p", "", "public directory (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, public string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if public != "" {
		cfg.Server.Public = public
	}

	content, err := site.Load(cfg.Server.Content)
	if err != nil {
		return err
	}

	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	server.InstallLogHooks(c.Logger)

	srv, err := server.New(server.Deps{
		Config:  cfg,
		Content: content,
		Cache:   store,
		Logger:  c.Logger,
	})
	if err != nil {
		return err
	}

	printInfo("Serving %s on %s", StyleValue.Render(cfg.Server.Public), StyleLink.Render(displayAddr(cfg.Server.Addr)))
	return srv.Run(ctx)
}

// displayAddr turns a listen address into a URL a browser can open.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
