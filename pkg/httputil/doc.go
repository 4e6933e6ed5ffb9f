// Package httputil provides the HTTP client used to read remote media.
//
// # Overview
//
// Photos and audio are normally served from the local public directory, but
// a gallery can also reference absolute http(s) URLs. The probe and EXIF
// readers fetch those through a shared [Client]:
//
//   - [Client.Open]: stream a response body
//   - [Client.Fetch]: read up to a byte limit into memory
//   - [Retry]: retry transient failures with exponential backoff
//
// # Usage
//
//	client := httputil.NewClient(nil)
//	head, err := client.Fetch(ctx, "https://cdn.example.com/a.jpg", 64<<10)
//
// Only 5xx responses and transport failures are retried; 404 maps to
// [errors.ErrCodeNotFound] and every other non-200 status to
// [errors.ErrCodeNetwork].
package httputil
