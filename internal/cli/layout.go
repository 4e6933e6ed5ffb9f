package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/gallery/probe"
	"github.com/jcolasacco/folio/pkg/media"
)

const (
	defaultPreviewWidth = 1200
	defaultCellWidth    = 12
)

// layoutCommand creates the layout command that packs the photo grid
// without a browser.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		width   float64
		cell    float64
		asJSON  bool
		watch   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Pack the photo grid for a container width",
		Long: `Pack the photo grid for a container width.

The photos below <public>/photos are measured, ordered by capture time and
packed into justified rows exactly as the site does. The rows are printed as
a table, as JSON with --json, or previewed interactively with --watch, in
which case the terminal width drives the container width (--cell pixels per
column) and resizing the terminal re-packs the grid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if width < 0 {
				return fmt.Errorf("width must not be negative: %v", width)
			}
			if cell <= 0 {
				return fmt.Errorf("cell must be positive: %v", cell)
			}
			metas, opts, err := c.resolveGrid(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			if watch {
				_, err := tea.NewProgram(newGridModel(metas, opts, cell), tea.WithAltScreen()).Run()
				return err
			}

			opts = opts.WithWidth(width)
			rows := gallery.Pack(metas, opts)
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			printRows(rows, opts)
			return nil
		},
	}

	cmd.Flags().Float64VarP(&width, "width", "w", defaultPreviewWidth, "container width in pixels")
	cmd.Flags().Float64Var(&cell, "cell", defaultCellWidth, "pixels per terminal column in --watch mode")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the rows as JSON")
	cmd.Flags().BoolVar(&watch, "watch", false, "interactive preview that follows the terminal width")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// resolveGrid measures the photos of the configured public directory.
func (c *CLI) resolveGrid(ctx context.Context, noCache bool) ([]gallery.Meta, gallery.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, gallery.Options{}, err
	}
	store, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, gallery.Options{}, fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	catalog := media.NewCatalog(cfg.Server.Public)
	refs, err := catalog.Refs(ctx)
	if err != nil {
		return nil, gallery.Options{}, err
	}

	p := probe.NewCachedProber(probe.Mux{Local: probe.NewFileProber(catalog.Public())}, store, cfg.CacheKeyer(), probe.DefaultTTL)
	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Measuring %d photos", len(refs)))
	spinner.Start()
	metas := probe.Resolve(ctx, p, refs, cfg.LiveConfig(catalog).Probe)
	spinner.Stop()
	if err := ctx.Err(); err != nil {
		return nil, gallery.Options{}, err
	}
	prog.done("Measured %d photos", len(metas))

	return metas, cfg.GalleryOptions(), nil
}

// printRows prints one table line per packed row.
func printRows(rows []gallery.Row, opts gallery.Options) {
	if len(rows) == 0 {
		printInfo("No rows (no photos, or width is zero)")
		return
	}
	fmt.Println(rowsTable(rows, opts))
	printKeyValue("rows", strconv.Itoa(len(rows)))
	printKeyValue("height", formatPx(gallery.Height(rows, opts)))
}

// rowsTable renders rows as a bordered table.
func rowsTable(rows []gallery.Row, opts gallery.Options) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		mode := "justified"
		if r.Centered {
			mode = "centered"
		}
		data[i] = []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(len(r.Items)),
			formatPx(r.Height()),
			formatPx(r.Width(opts.Gap)),
			mode,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Row", "Items", "Height", "Width", "Mode").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 4 && rows[row].Centered {
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "px"
}
