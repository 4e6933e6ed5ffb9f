package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jcolasacco/folio/pkg/media"
)

// thumbsCommand creates the thumbs command that prepares grid thumbnails.
func (c *CLI) thumbsCommand() *cobra.Command {
	var (
		in      string
		out     string
		width   int
		workers int
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "thumbs",
		Short: "Generate thumbnails for the photo grid",
		Long: `Generate thumbnails for the photo grid.

Every JPEG, PNG and WebP in the input directory is resized to the configured
width, honouring its EXIF orientation, and written as a JPEG. Thumbnails that
are newer than their source are left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			catalog := media.NewCatalog(cfg.Server.Public)
			opts := media.ThumbOptions{
				In:      catalog.PhotoDir(),
				Out:     catalog.ThumbDir(),
				Width:   cfg.Thumbs.Width,
				Workers: cfg.Thumbs.Workers,
				Force:   force,
			}
			if in != "" {
				opts.In = in
			}
			if out != "" {
				opts.Out = out
			}
			if width > 0 {
				opts.Width = width
			}
			if workers > 0 {
				opts.Workers = workers
			}
			return c.runThumbs(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "source directory (default: <public>/photos)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default: <public>/photos/thumbs)")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "thumbnail width in pixels (overrides config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel encoders (overrides config)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate up-to-date thumbnails")

	return cmd
}

func (c *CLI) runThumbs(ctx context.Context, opts media.ThumbOptions) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resizing %s", filepath.Base(opts.In)))
	spinner.Start()
	report, err := media.GenerateThumbnails(ctx, opts)
	if err != nil {
		spinner.StopWithError("Thumbnail generation stopped")
		return err
	}
	spinner.Stop()

	prog.done("Processed %d images", report.Created+report.Skipped+report.Failed)
	if report.Failed > 0 {
		printWarning("%d images could not be resized", report.Failed)
	} else {
		printSuccess("Thumbnails ready")
	}
	fmt.Println(thumbStats(report.Created, report.Skipped, report.Failed))
	printDetail("Directory: %s", opts.Out)
	if report.Created > 0 {
		printNextStep("Serve the site", appName+" serve")
	}
	return nil
}
