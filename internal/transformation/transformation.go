package transformation

import (
	"bytes"
	"fmt"
	"image"
	"io"

	// imaging registers jpeg, png, gif, bmp and tiff; webp needs its own decoder.
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"

	predictErrors "github.com/mahirjain10/search-term-predictor/internal/errors"
)

const (
	MaxWidth  = 500
	MaxHeight = 500

	jpegQuality = 75
)

// Decode reads a raster image of any registered format, applying EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, predictErrors.Wrap(predictErrors.ErrDecode, "failed to decode image", err)
	}
	return img, nil
}

// Fit scales img down so it fits inside maxWidth x maxHeight keeping its aspect ratio.
// Images already inside the box keep their size.
func Fit(img image.Image, maxWidth int, maxHeight int) image.Image {
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

func EncodeJPEG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("error while encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ResizeToJPEG decodes r, fits it inside the given box and re-encodes it as JPEG.
func ResizeToJPEG(r io.Reader, maxWidth int, maxHeight int) ([]byte, error) {
	// 1. Decode the image
	img, err := Decode(r)
	if err != nil {
		return nil, err
	}

	// 2. Transform: imaging.Fit keeps the aspect ratio and never upscales
	resized := Fit(img, maxWidth, maxHeight)

	// 3. Re-encode as JPEG whatever the source format was
	return EncodeJPEG(resized)
}
