package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// DecodeFile reads and decodes an image file into RGBA. PNG, JPEG and BMP go
// through the image registry; TGA is dispatched by extension since it has no
// magic bytes.
func DecodeFile(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", path, err)
	}
	return Decode(data, path)
}

// Decode decodes image bytes into RGBA, using the file name only to detect
// TGA payloads.
func Decode(data []byte, name string) (*image.RGBA, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image.Image to *image.RGBA, returning the input
// unchanged when it already is one.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// Solid returns a 1x1 RGBA image of the given color, used as the substitute
// for assets that failed to decode.
func Solid(r, g, b, a uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = r, g, b, a
	return img
}

// White returns a 1x1 white image.
func White() *image.RGBA { return Solid(255, 255, 255, 255) }

// Black returns a 1x1 black image.
func Black() *image.RGBA { return Solid(0, 0, 0, 255) }
