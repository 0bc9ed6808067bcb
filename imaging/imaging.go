// Package imaging handles the encode/decode round trip between image
// files on disk and the base64 text blobs stored alongside each
// conversation record and sent inline to the API.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"os"
)

// Load reads and decodes an image file. Only PNG and JPEG are
// supported; anything else is rejected up front so a bad attachment
// fails at attach time rather than mid-request.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("unsupported image format %q (want png or jpeg)", format)
	}
	return img, nil
}

// EncodeBase64 re-encodes an image as PNG and returns the base64 form.
// PNG is lossless, so a stored blob decodes back to the same pixels.
func EncodeBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeBase64 converts a stored base64 blob back into an image.
func DecodeBase64(b64 string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return img, nil
}

// DataURL wraps a base64 blob in the inline data-URL form the
// chat-completion API expects for image parts.
func DataURL(b64 string) string {
	return "data:image/png;base64," + b64
}

// WritePNG saves an image to a PNG file, used when exporting a stored
// attachment back to disk.
func WritePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to write PNG %s: %w", path, err)
	}
	return nil
}
