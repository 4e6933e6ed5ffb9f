// Package lightbox sizes the full-resolution view of a selected photo.
//
// [Fit] scales an image's natural size into the viewport bounds
// (92% of the width capped at 1400px, 90% of the height capped at 1100px)
// without ever upscaling. Until the natural size is known the modal shows a
// [Provisional] box equal to those bounds.
//
// [Controller] runs the open/close lifecycle. Opening enters the measuring
// state immediately and starts two lookups concurrently: the image's
// natural size and its exposure metadata. Each result is applied only if
// the lightbox still shows the image it was requested for. A metadata
// failure leaves the labels unknown and never affects sizing.
package lightbox
