package assistant

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

const (
	// maxDimension bounds the longest side of an image sent to the LLM.
	maxDimension = 800
	jpegQuality  = 80
	// maxEncodedBytes caps the base64 payload; larger images get rejected
	// after downscaling instead of blowing the request budget.
	maxEncodedBytes = 900_000
)

// downscale decodes raw image bytes, fits them inside
// maxDimension x maxDimension and re-encodes as JPEG, returning the base64
// payload and its media type.
func downscale(data []byte) (string, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", "", fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", "", fmt.Errorf("encode image: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	if len(encoded) > maxEncodedBytes {
		return "", "", fmt.Errorf("image is too large even after downscaling")
	}
	return encoded, "image/jpeg", nil
}
