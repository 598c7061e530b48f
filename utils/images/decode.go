// Package images decodes the raster and vector formats accepted in document
// sources and prepares them for embedding. JPEG keeps its original stream so
// the writer can pass it through; everything else is normalized to NRGBA.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// maxPixelDim caps the larger dimension of a decoded image. Oversized inputs
// are downscaled before embedding; page placement scales the result anyway.
const maxPixelDim = 4096

// reencodeQuality is used when a JPEG source cannot be passed through and
// has to be compressed again.
const reencodeQuality = 85

// Decoded is an image ready for embedding.
type Decoded struct {
	// Pixels is the normalized pixel data, always non-nil.
	Pixels *image.NRGBA
	// JPEG holds a baseline stream for DCT embedding: the original bytes
	// when they can be passed through untouched, a re-encode when the source
	// was downscaled or uses an unsupported color model. Nil for non-JPEG
	// sources.
	JPEG []byte
	// JPEGGray marks a passthrough stream as single channel grayscale.
	JPEGGray bool
	// Format is the sniffed source format name, e.g. "jpg" or "svg".
	Format string
}

// Width returns the pixel width.
func (d *Decoded) Width() int { return d.Pixels.Bounds().Dx() }

// Height returns the pixel height.
func (d *Decoded) Height() int { return d.Pixels.Bounds().Dy() }

// AspectRatio returns width over height.
func (d *Decoded) AspectRatio() float64 {
	return float64(d.Width()) / float64(d.Height())
}

// Decode sniffs and decodes image data. origin names the source (a path or a
// block description) and appears in errors only.
func Decode(data []byte, origin string) (*Decoded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s is empty", origin)
	}

	if looksLikeSVG(data) {
		img, err := RasterizeSVG(data, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("rasterizing SVG %s (%d bytes): %w", origin, len(data), err)
		}
		return &Decoded{Pixels: imaging.Clone(img), Format: "svg"}, nil
	}

	kind, _ := filetype.Match(data)
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image %s (%s, %d bytes): %w", origin, kindName(kind), len(data), err)
	}

	pixels := imaging.Clone(img)
	oversized := false
	if w, h := pixels.Bounds().Dx(), pixels.Bounds().Dy(); w > maxPixelDim || h > maxPixelDim {
		pixels = imaging.Fit(pixels, maxPixelDim, maxPixelDim, imaging.Lanczos)
		oversized = true
	}

	out := &Decoded{Pixels: pixels, Format: kindName(kind)}
	if kind.Extension == "jpg" {
		if !oversized && isBaselineJPEG(img) {
			out.JPEG = data
			_, out.JPEGGray = img.(*image.Gray)
		} else if enc, err := EncodeJPEG(pixels, reencodeQuality); err == nil {
			out.JPEG = enc
		}
	}
	return out, nil
}

func kindName(kind types.Type) string {
	if kind == filetype.Unknown {
		return "unknown format"
	}
	return kind.Extension
}

// isBaselineJPEG reports whether the decoded image uses a color model the
// DCTDecode passthrough handles. CMYK JPEGs are re-encoded instead.
func isBaselineJPEG(img image.Image) bool {
	switch img.(type) {
	case *image.YCbCr, *image.Gray:
		return true
	default:
		return false
	}
}

// EncodeJPEG re-encodes pixel data as a baseline JPEG stream, used when the
// original stream cannot be passed through.
func EncodeJPEG(pixels image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, pixels, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// looksLikeSVG scans the first kilobyte for an svg root element, skipping the
// XML declaration, comments and doctype that commonly precede it.
func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("<svg"))
}
