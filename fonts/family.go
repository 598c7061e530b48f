// Package fonts provides the font families used by the layout engine: the
// built-in core Helvetica family (metrics only, no embedded program) and
// TrueType families loaded from disk and measured through x/image/font/sfnt.
// Text is measured and emitted in the Windows-1252 ("WinAnsi") encoding.
package fonts

import (
	"golang.org/x/text/encoding/charmap"
)

// Variant is one of the four faces of a family together with everything the
// renderer needs: advance widths, vertical metrics and (for TrueType faces)
// the font program to embed.
type Variant struct {
	name         string
	widths       [256]int // 1/1000 em per WinAnsi code, 0 means default
	defaultWidth int
	ascent       int // 1/1000 em, positive up
	descent      int // 1/1000 em, negative down
	capHeight    int
	italicAngle  float64
	bbox         [4]int
	program      []byte // nil for core fonts
}

// Name returns the PostScript name used as /BaseFont.
func (v *Variant) Name() string { return v.name }

// IsEmbedded reports whether the variant carries a font program to embed.
func (v *Variant) IsEmbedded() bool { return len(v.program) > 0 }

// Program returns the raw TrueType bytes, nil for core fonts.
func (v *Variant) Program() []byte { return v.program }

// Ascent returns the ascender in 1/1000 em.
func (v *Variant) Ascent() int { return v.ascent }

// Descent returns the (negative) descender in 1/1000 em.
func (v *Variant) Descent() int { return v.descent }

// CapHeight returns the capital height in 1/1000 em.
func (v *Variant) CapHeight() int { return v.capHeight }

// ItalicAngle returns the slant in degrees, 0 for upright faces.
func (v *Variant) ItalicAngle() float64 { return v.italicAngle }

// BBox returns the font bounding box in 1/1000 em units.
func (v *Variant) BBox() [4]int { return v.bbox }

// GlyphWidth returns the advance of a single WinAnsi code in 1/1000 em.
func (v *Variant) GlyphWidth(code byte) int {
	if w := v.widths[code]; w > 0 {
		return w
	}
	return v.defaultWidth
}

// TextWidthPt measures an already encoded string in points at the given size.
func (v *Variant) TextWidthPt(encoded []byte, sizePt float64) float64 {
	total := 0
	for _, code := range encoded {
		total += v.GlyphWidth(code)
	}
	return float64(total) * sizePt / 1000
}

// Family is the set of four variants required by the renderer. A family is
// complete by construction - loading fails unless all four faces resolve.
type Family struct {
	name       string
	regular    *Variant
	bold       *Variant
	italic     *Variant
	boldItalic *Variant
}

// Name returns the family name.
func (f *Family) Name() string { return f.name }

// Variant selects the face matching the requested emphasis.
func (f *Family) Variant(bold, italic bool) *Variant {
	switch {
	case bold && italic:
		return f.boldItalic
	case bold:
		return f.bold
	case italic:
		return f.italic
	default:
		return f.regular
	}
}

// Variants returns the four faces in regular, bold, italic, bold-italic
// order; the renderer relies on this ordering for resource naming.
func (f *Family) Variants() [4]*Variant {
	return [4]*Variant{f.regular, f.bold, f.italic, f.boldItalic}
}

// Encode converts a string to WinAnsi bytes. Runes outside the encoding are
// replaced with a question mark so measurement and emission never disagree.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return out
}

// DecodeByte maps a WinAnsi code back to its rune, used when sampling glyph
// advances from TrueType fonts.
func DecodeByte(b byte) rune {
	return charmap.Windows1252.DecodeByte(b)
}
