package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jcolasacco/folio/pkg/gallery"
)

// Tile colors cycle so neighbouring tiles stay distinguishable.
var tileStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(colorCyan),
	lipgloss.NewStyle().Foreground(colorBlue),
	lipgloss.NewStyle().Foreground(colorGreen),
	lipgloss.NewStyle().Foreground(colorGray),
}

var gridDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// GridModel - Live grid preview
// =============================================================================

// GridModel previews the packed grid in the terminal. The container width
// is the terminal width times Cell, so resizing the terminal re-packs the
// rows the way resizing a browser window does.
type GridModel struct {
	Metas []gallery.Meta
	Opts  gallery.Options
	Cell  float64 // pixels per column

	Rows   []gallery.Row
	Cols   int
	Height int
	Offset int
}

// newGridModel creates a preview; rows are packed on the first
// WindowSizeMsg.
func newGridModel(metas []gallery.Meta, opts gallery.Options, cell float64) GridModel {
	return GridModel{Metas: metas, Opts: opts, Cell: cell, Height: 15}
}

func (m GridModel) Init() tea.Cmd {
	return nil
}

func (m GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		case "down", "j":
			if m.Offset < len(m.Rows)-1 {
				m.Offset++
			}
		case "+", "=":
			m.Cell = math.Max(m.Cell/1.25, 1)
			m = m.repack()
		case "-":
			m.Cell *= 1.25
			m = m.repack()
		}
	case tea.WindowSizeMsg:
		m.Cols = msg.Width
		m.Height = max(msg.Height-4, 3)
		m = m.repack()
	}
	return m, nil
}

// Width returns the container width in pixels.
func (m GridModel) Width() float64 {
	return float64(m.Cols) * m.Cell
}

func (m GridModel) repack() GridModel {
	m.Rows = gallery.Pack(m.Metas, m.Opts.WithWidth(m.Width()))
	if m.Offset >= len(m.Rows) {
		m.Offset = max(len(m.Rows)-1, 0)
	}
	return m
}

func (m GridModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Grid preview"))
	b.WriteString(gridDimStyle.Render(fmt.Sprintf("  %.0fpx · %d photos · %d rows", m.Width(), len(m.Metas), len(m.Rows))))
	b.WriteString("\n")
	b.WriteString(gridDimStyle.Render("↑/↓ scroll  +/- zoom  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	tile := 0
	for i := 0; i < m.Offset; i++ {
		tile += len(m.Rows[i].Items)
	}
	for i := m.Offset; i < end; i++ {
		line, n := m.renderRow(m.Rows[i], tile)
		tile += n
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.Rows) == 0 {
		b.WriteString(gridDimStyle.Render("  no rows"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderRow draws each item as a bar proportional to its width. first is
// the index of the row's first tile, used to pick colors.
func (m GridModel) renderRow(r gallery.Row, first int) (string, int) {
	gapCols := int(math.Round(m.Opts.Gap / m.Cell))
	var line strings.Builder
	used := 0
	for j, it := range r.Items {
		if j > 0 {
			line.WriteString(strings.Repeat(" ", gapCols))
			used += gapCols
		}
		cols := max(int(math.Round(it.Width/m.Cell)), 1)
		style := tileStyles[(first+j)%len(tileStyles)]
		line.WriteString(style.Render(strings.Repeat("█", cols)))
		used += cols
	}

	indent := ""
	if r.Centered && used < m.Cols {
		indent = strings.Repeat(" ", (m.Cols-used)/2)
	}
	return indent + line.String(), len(r.Items)
}
