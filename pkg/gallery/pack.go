package gallery

import "math"

// Pack partitions metas into justified rows for the container width in opts.
//
// Items are accumulated left to right. After adding an item the candidate
// row width is arSum*target + gap*(n-1); once that meets or exceeds the
// container width the row closes with the item that crossed the threshold.
// A closed row wider than the container is scaled down (or, for a row that
// lands short through float rounding, left as is) so that items plus gaps
// span exactly the container. The leftover buffer after the last meta is
// flushed unscaled and marked Centered.
//
// Pack returns nil while the width is unknown (<= 0) or metas is empty.
func Pack(metas []Meta, opts Options) []Row {
	opts = opts.WithDefaults()
	if opts.Width <= 0 || len(metas) == 0 {
		return nil
	}

	var (
		rows  []Row
		start int
		arSum float64
	)
	for i, m := range metas {
		arSum += m.AspectRatio
		n := i - start + 1
		candidate := arSum*opts.TargetRowHeight + opts.Gap*float64(n-1)
		if candidate >= opts.Width {
			rows = append(rows, closeRow(metas[start:i+1], opts, false))
			start = i + 1
			arSum = 0
		}
	}
	if start < len(metas) {
		rows = append(rows, closeRow(metas[start:], opts, true))
	}
	return rows
}

// closeRow resolves the height of one row and sizes its items.
func closeRow(metas []Meta, opts Options, trailing bool) Row {
	gaps := opts.Gap * float64(len(metas)-1)
	var natural float64
	for _, m := range metas {
		natural += m.AspectRatio * opts.TargetRowHeight
	}

	justify := !trailing && natural+gaps > opts.Width
	scale := 1.0
	if justify {
		scale = (opts.Width - gaps) / natural
	}
	height := math.Max(MinRowHeight, opts.TargetRowHeight*scale)

	items := make([]RowItem, len(metas))
	for i, m := range metas {
		items[i] = RowItem{
			ThumbURL: m.ThumbURL,
			FullURL:  m.FullURL,
			Width:    m.AspectRatio * height,
			Height:   height,
		}
	}
	return Row{Items: items, Centered: !justify}
}
