package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 80), B: uint8(x*y) * 20, A: 255})
		}
	}
	return img
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create temp png: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode temp png: %v", err)
	}
	return path
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := testImage()

	b64, err := EncodeBase64(src)
	if err != nil {
		t.Fatalf("EncodeBase64() error = %v", err)
	}

	got, err := DecodeBase64(b64)
	if err != nil {
		t.Fatalf("DecodeBase64() error = %v", err)
	}

	if got.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: got %v, want %v", got.Bounds(), src.Bounds())
	}

	// PNG is lossless, so every pixel must survive the round trip
	for y := src.Bounds().Min.Y; y < src.Bounds().Max.Y; y++ {
		for x := src.Bounds().Min.X; x < src.Bounds().Max.X; x++ {
			wr, wg, wb, wa := src.At(x, y).RGBA()
			gr, gg, gb, ga := got.At(x, y).RGBA()
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d) changed: got %v, want %v", x, y, got.At(x, y), src.At(x, y))
			}
		}
	}
}

func TestLoadPNG(t *testing.T) {
	path := writeTestPNG(t, testImage())

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an-image.png")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error for non-image data")
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	if _, err := DecodeBase64("!!not base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	// Valid base64, invalid image bytes
	if _, err := DecodeBase64("aGVsbG8gd29ybGQ="); err == nil {
		t.Fatal("expected error for non-image payload")
	}
}

func TestDataURL(t *testing.T) {
	url := DataURL("Zm9v")
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected data URL prefix: %q", url)
	}
	if !strings.HasSuffix(url, "Zm9v") {
		t.Fatalf("data URL lost the payload: %q", url)
	}
}

func TestWritePNG(t *testing.T) {
	src := testImage()
	path := filepath.Join(t.TempDir(), "out.png")

	if err := WritePNG(src, path); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after WritePNG error = %v", err)
	}
	if got.Bounds() != src.Bounds() {
		t.Fatalf("exported image bounds changed: got %v, want %v", got.Bounds(), src.Bounds())
	}
}
