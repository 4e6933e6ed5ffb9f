package gallery

import (
	"github.com/jcolasacco/folio/pkg/errors"
)

// Layout defaults.
const (
	// DefaultTargetRowHeight is the height rows are packed against.
	DefaultTargetRowHeight = 300.0

	// DefaultGap is the spacing between tiles and between rows.
	DefaultGap = 20.0

	// DefaultTopOffset pushes the grid below the fixed site header.
	DefaultTopOffset = 120.0

	// MinRowHeight is the floor applied to every resolved row height.
	MinRowHeight = 160.0
)

// Options configures packing and placement.
//
// Width is the container's content width; zero means it has not been
// measured yet and packing yields no rows.
type Options struct {
	Width           float64 `json:"width" toml:"-"`
	TargetRowHeight float64 `json:"target_row_height" toml:"target_row_height"`
	Gap             float64 `json:"gap" toml:"gap"`
	TopOffset       float64 `json:"top_offset" toml:"top_offset"`
}

// DefaultOptions returns the default options with an unknown width.
func DefaultOptions() Options {
	return Options{
		TargetRowHeight: DefaultTargetRowHeight,
		Gap:             DefaultGap,
		TopOffset:       DefaultTopOffset,
	}
}

// WithDefaults returns a copy with a zero TargetRowHeight replaced by its
// default. Gap and TopOffset are left alone because zero is meaningful.
func (o Options) WithDefaults() Options {
	if o.TargetRowHeight == 0 {
		o.TargetRowHeight = DefaultTargetRowHeight
	}
	return o
}

// WithWidth returns a copy with the given container width.
func (o Options) WithWidth(width float64) Options {
	o.Width = width
	return o
}

// Validate rejects option values the packer cannot work with.
func (o Options) Validate() error {
	if o.TargetRowHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "target row height must be positive: %v", o.TargetRowHeight)
	}
	if o.Gap < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "gap must not be negative: %v", o.Gap)
	}
	if o.Width < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "width must not be negative: %v", o.Width)
	}
	if o.TopOffset < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "top offset must not be negative: %v", o.TopOffset)
	}
	return nil
}
