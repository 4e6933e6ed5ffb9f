package media

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.JPG", "a.jpeg", "c.png", "notes.txt", "d.webp", "Z.avif", ".hidden.gif"} {
		writeFile(t, filepath.Join(dir, name), []byte("x"))
	}
	if err := os.Mkdir(filepath.Join(dir, "thumbs.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		exts []string
		want []string
	}{
		{"photos", PhotoExts, []string{"Z.avif", "a.jpeg", "b.JPG", "c.png", "d.webp"}},
		{"upper-case allow-list", []string{".PNG"}, []string{"c.png"}},
		{"no match", AudioExts, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := List(dir, tt.exts)
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListMissingDirectory(t *testing.T) {
	got, err := List(filepath.Join(t.TempDir(), "nope"), PhotoExts)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List() = %#v, want empty list", got)
	}
}

func TestPublicPath(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"plain", "/photos/a.jpg", filepath.Join("pub", "photos", "a.jpg"), false},
		{"escaped space", "/photos/my%20trip.jpg", filepath.Join("pub", "photos", "my trip.jpg"), false},
		{"query", "/photos/a.jpg?v=1", filepath.Join("pub", "photos", "a.jpg"), false},
		{"traversal", "/photos/../secret", "", true},
		{"escaped traversal", "/photos/%2e%2e/secret", "", true},
		{"relative", "photos/a.jpg", "", true},
		{"bad escape", "/photos/%zz.jpg", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PublicPath("pub", tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PublicPath(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PublicPath(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
