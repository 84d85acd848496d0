// Package imaging decodes fetched glyph bytes and scales them to the
// requested render size. The cache layers store bytes exactly as downloaded;
// decoding happens here, at the rendering boundary, so a corrupt download is
// a rendering error rather than a cache error.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"io"

	// CDN glyph assets are PNG; GIF and JPEG decoders are registered for
	// the odd host that serves them.
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// Scale decodes raw image bytes and resamples them to a size×size square
// using a Catmull-Rom kernel, the high-quality choice for emoji-scale art.
func Scale(raw []byte, size int) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid target size %d", size)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding glyph image: %w", err)
	}

	if b := src.Bounds(); b.Dx() == size && b.Dy() == size {
		return src, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding glyph png: %w", err)
	}
	return nil
}
