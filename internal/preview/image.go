package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// FitWithin scales an image down to fit within maxSize (width or height) while
// keeping aspect ratio. Images that already fit, and a maxSize <= 0, are
// returned as they are.
func FitWithin(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return img
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = max(1, int(float64(height)*float64(maxSize)/float64(width)))
	} else {
		newHeight = maxSize
		newWidth = max(1, int(float64(width)*float64(maxSize)/float64(height)))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}

// EncodePNG encodes an image as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL wraps PNG bytes in a data: URL an <img> element can display.
func DataURL(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}
