package gallery

// Place converts rows into absolutely positioned tiles. Rows stack downward
// from opts.TopOffset separated by opts.Gap; centered rows are offset so
// they sit in the middle of the container, justified rows start at x=0.
func Place(rows []Row, opts Options) []Tile {
	opts = opts.WithDefaults()

	n := 0
	for _, r := range rows {
		n += len(r.Items)
	}
	tiles := make([]Tile, 0, n)

	y := opts.TopOffset
	for ri, r := range rows {
		x := 0.0
		if r.Centered {
			x = max((opts.Width-r.Width(opts.Gap))/2, 0)
		}
		for _, it := range r.Items {
			tiles = append(tiles, Tile{
				FullURL:  it.FullURL,
				ThumbURL: it.ThumbURL,
				Row:      ri,
				X:        x,
				Y:        y,
				Width:    it.Width,
				Height:   it.Height,
			})
			x += it.Width + opts.Gap
		}
		y += r.Height() + opts.Gap
	}
	return tiles
}

// Height returns the total height of the placed grid including the top
// offset, or zero when there are no rows.
func Height(rows []Row, opts Options) float64 {
	if len(rows) == 0 {
		return 0
	}
	opts = opts.WithDefaults()
	h := opts.TopOffset + opts.Gap*float64(len(rows)-1)
	for _, r := range rows {
		h += r.Height()
	}
	return h
}
