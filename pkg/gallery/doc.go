// Package gallery implements the justified photo-grid layout.
//
// Images of arbitrary aspect ratio are packed greedily into rows. A row
// closes as soon as its natural width at the target height (plus inter-tile
// gaps) meets or exceeds the container width; closed rows are then scaled so
// that they fill the container exactly. Whatever is left at the end of the
// sequence becomes the trailing row, which keeps the target height and is
// rendered centered.
//
// # Pipeline
//
//	refs   → probe.Resolve  → []Meta        (aspect ratios)
//	metas  → Pack           → []Row         (keyed by container width)
//	rows   → Place          → []Tile        (absolute rectangles)
//	tiles  → viewport.Field → revealed URLs (lazy loading)
//
// [Pack] and [Place] are pure functions of their inputs; calling them twice
// with identical arguments yields identical results.
//
// # Example
//
//	rows := gallery.Pack(metas, gallery.Options{Width: 1000})
//	for _, r := range rows {
//	    fmt.Println(len(r.Items), r.Centered, r.Height())
//	}
package gallery
