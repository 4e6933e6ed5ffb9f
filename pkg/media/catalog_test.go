package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCatalogThumbURL(t *testing.T) {
	public := t.TempDir()
	c := NewCatalog(public)
	writeFile(t, filepath.Join(c.PhotoDir(), "a.jpg"), []byte("x"))
	writeFile(t, filepath.Join(c.PhotoDir(), "b.jpg"), []byte("x"))
	writeFile(t, filepath.Join(c.PhotoDir(), "c.webp"), []byte("x"))
	writeFile(t, filepath.Join(c.ThumbDir(), "a.jpg"), []byte("x"))
	writeFile(t, filepath.Join(c.ThumbDir(), "c.webp.jpg"), []byte("x"))

	tests := []struct {
		name string
		want string
	}{
		{"a.jpg", "/photos/thumbs/a.jpg"},
		{"b.jpg", "/photos/b.jpg"},
		{"c.webp", "/photos/thumbs/c.webp.jpg"},
		{"my trip.jpg", "/photos/my%20trip.jpg"},
	}

	for _, tt := range tests {
		if got := c.ThumbURL(tt.name); got != tt.want {
			t.Errorf("ThumbURL(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCatalogThumbURLSiblingFormats(t *testing.T) {
	c := NewCatalog(t.TempDir())
	for _, n := range []string{"a.jpg", "a.avif", "b.webp", "b.jpg"} {
		writeFile(t, filepath.Join(c.PhotoDir(), n), []byte("x"))
	}
	writeFile(t, filepath.Join(c.ThumbDir(), "a.jpg"), []byte("x"))
	writeFile(t, filepath.Join(c.ThumbDir(), "b.jpg"), []byte("x"))

	tests := []struct {
		name string
		want string
	}{
		{"a.jpg", "/photos/thumbs/a.jpg"},
		{"a.avif", "/photos/a.avif"},
		{"b.webp", "/photos/b.webp"},
		{"b.jpg", "/photos/thumbs/b.jpg"},
	}
	for _, tt := range tests {
		if got := c.ThumbURL(tt.name); got != tt.want {
			t.Errorf("ThumbURL(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCatalogRefs(t *testing.T) {
	public := t.TempDir()
	c := NewCatalog(public)

	old := time.Date(2019, 3, 1, 10, 0, 0, 0, time.UTC)
	recent := time.Date(2023, 8, 9, 10, 0, 0, 0, time.UTC)
	for name, mtime := range map[string]time.Time{"beach.png": recent, "alps.png": old} {
		p := filepath.Join(c.PhotoDir(), name)
		writeFile(t, p, pngBytes(t, 4, 3))
		if err := os.Chtimes(p, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(c.ThumbDir(), "beach.png"), pngBytes(t, 2, 1))

	refs, err := c.Refs(context.Background())
	if err != nil {
		t.Fatalf("Refs() error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("Refs() = %d refs, want 2", len(refs))
	}

	if refs[0].FullURL != "/photos/alps.png" || refs[0].ThumbURL != "/photos/alps.png" {
		t.Errorf("refs[0] = %+v", refs[0])
	}
	if refs[1].FullURL != "/photos/beach.png" || refs[1].ThumbURL != "/photos/thumbs/beach.png" {
		t.Errorf("refs[1] = %+v", refs[1])
	}
	if !refs[0].Taken.Equal(old) || !refs[1].Taken.Equal(recent) {
		t.Errorf("Taken = %v, %v; want mtime fallback", refs[0].Taken, refs[1].Taken)
	}

	if got := c.Taken(context.Background(), "/photos/beach.png"); !got.Equal(recent) {
		t.Errorf("Taken() = %v, want %v", got, recent)
	}
	if got := c.Taken(context.Background(), "/photos/../x"); !got.IsZero() {
		t.Errorf("Taken(traversal) = %v, want zero", got)
	}
}

func TestCatalogEmpty(t *testing.T) {
	c := NewCatalog(t.TempDir())
	refs, err := c.Refs(context.Background())
	if err != nil || len(refs) != 0 {
		t.Errorf("Refs() = %v, %v; want empty", refs, err)
	}
	tracks, err := c.Tracks()
	if err != nil || len(tracks) != 0 {
		t.Errorf("Tracks() = %v, %v; want empty", tracks, err)
	}
}

func TestCatalogTracks(t *testing.T) {
	c := NewCatalog(t.TempDir())
	writeFile(t, filepath.Join(c.MusicDir(), "b side.mp3"), []byte("x"))
	writeFile(t, filepath.Join(c.MusicDir(), "a.FLAC"), []byte("x"))
	writeFile(t, filepath.Join(c.MusicDir(), "a.jpg"), []byte("x"))

	got, err := c.Tracks()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/music/a.FLAC", "/music/b%20side.mp3"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Tracks() = %v, want %v", got, want)
	}
}
