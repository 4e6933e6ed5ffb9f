// Package audio builds the track list for the audio page.
//
// Each file under the public music directory becomes a [Track]. The title and
// artist come from the file's tags ([github.com/dhowden/tag]) and fall
// back to the file's base name and "unreleased". A cover image is taken from
// a sidecar file next to the track (same base name, .jpg .jpeg .png or
// .webp) or, failing that, from the picture embedded in the tags.
//
// Embedded pictures are kept in a [CoverStore] and served by handle. A
// [Library] owns the handles of its current track list: they are released
// exactly once, when a newer list replaces it or the library is closed.
package audio
