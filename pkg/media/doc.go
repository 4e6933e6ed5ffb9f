// Package media reads the site's media directories.
//
// The public directory holds photos under photos/ (with generated
// thumbnails in photos/thumbs/) and audio under music/. This package lists
// those files, maps them to site URLs, extracts EXIF capture metadata and
// generates thumbnails offline.
//
// A missing directory is an empty collection, never an error. Metadata
// that cannot be read is simply unknown.
//
// # Usage
//
//	cat := media.NewCatalog("public")
//	refs, err := cat.Refs(ctx)
//
//	report, err := media.GenerateThumbnails(ctx, media.ThumbOptions{
//	    In:  cat.PhotoDir(),
//	    Out: cat.ThumbDir(),
//	})
package media
