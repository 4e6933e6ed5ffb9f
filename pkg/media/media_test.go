package media

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: uint8(x), G: 80, B: 160, A: 255})
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// exifTIFF builds a little-endian TIFF stream holding an Exif sub-IFD with
// ExposureTime 1/250, FNumber 2.8, ISO 400 and DateTimeOriginal taken.
func exifTIFF(taken string) []byte {
	le := binary.LittleEndian
	var b bytes.Buffer
	u16 := func(v uint16) { binary.Write(&b, le, v) }
	u32 := func(v uint32) { binary.Write(&b, le, v) }
	entry := func(tag, typ uint16, count, value uint32) {
		u16(tag)
		u16(typ)
		u32(count)
		u32(value)
	}

	const (
		ifd0     = 8
		exifIFD  = ifd0 + 2 + 12 + 4 // 26
		dataBase = exifIFD + 2 + 4*12 + 4
	)

	b.WriteString("II")
	u16(42)
	u32(ifd0)

	// IFD0: ExifIFDPointer only
	u16(1)
	entry(0x8769, 4, 1, exifIFD)
	u32(0)

	// Exif IFD, tags in ascending order
	u16(4)
	entry(0x829A, 5, 1, dataBase)    // ExposureTime
	entry(0x829D, 5, 1, dataBase+8)  // FNumber
	entry(0x8827, 3, 1, 400)         // ISOSpeedRatings, inline SHORT
	entry(0x9003, 2, 20, dataBase+16) // DateTimeOriginal
	u32(0)

	u32(1)
	u32(250)
	u32(28)
	u32(10)
	b.WriteString(taken)
	b.WriteByte(0)
	return b.Bytes()
}

// jpegWithExif splices an APP1 Exif segment after the SOI marker.
func jpegWithExif(t *testing.T, tiff []byte) []byte {
	t.Helper()
	img := jpegBytes(t, 64, 48)

	payload := append([]byte("Exif\x00\x00"), tiff...)
	var b bytes.Buffer
	b.Write(img[:2])
	b.Write([]byte{0xFF, 0xE1})
	binary.Write(&b, binary.BigEndian, uint16(len(payload)+2))
	b.Write(payload)
	b.Write(img[2:])
	return b.Bytes()
}
