// Package viewport tracks what the client can see of the gallery.
//
// [Tracker] holds the container width reported by the client and notifies
// subscribers whenever it changes; every change re-packs the grid.
//
// [Gate] is a one-way latch per tile: Unobserved → Observing → Visible.
// Once a tile comes within the proximity margin of the viewport it becomes
// visible for good, and its observation is released exactly once.
//
// [Field] keeps one gate per image, keyed by full URL, re-places them on
// every layout and reports which tiles a viewport newly reveals. Image
// URLs are only handed out for loading after their gate has latched.
package viewport
