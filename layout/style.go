package layout

import (
	"pdg/doc"
	"pdg/fonts"
)

// Style is the text appearance applied to a run of characters. The zero
// value is not usable; start from DefaultStyle.
type Style struct {
	family      *fonts.Family
	bold        bool
	italic      bool
	underline   bool
	color       doc.Color
	hasColor    bool
	sizePt      float64
	lineSpacing float64
}

// DefaultStyle returns 12pt upright black text with 1.2 line spacing.
func DefaultStyle(family *fonts.Family) Style {
	return Style{family: family, sizePt: 12, lineSpacing: 1.2}
}

func (s Style) WithBold(v bool) Style      { s.bold = v; return s }
func (s Style) WithItalic(v bool) Style    { s.italic = v; return s }
func (s Style) WithUnderline(v bool) Style { s.underline = v; return s }

func (s Style) WithColor(c doc.Color) Style {
	s.color = c
	s.hasColor = true
	return s
}

func (s Style) WithSizePt(size float64) Style { s.sizePt = size; return s }

func (s Style) WithLineSpacing(f float64) Style { s.lineSpacing = f; return s }

// ForSpan layers a span's emphasis and color over the base style.
func (s Style) ForSpan(span doc.Span) Style {
	out := s
	if span.IsBold() {
		out.bold = true
	}
	if span.IsItalic() {
		out.italic = true
	}
	if span.IsUnderlined() {
		out.underline = true
	}
	if c, ok := span.Color(); ok {
		out = out.WithColor(c)
	}
	return out
}

func (s Style) IsBold() bool       { return s.bold }
func (s Style) IsItalic() bool     { return s.italic }
func (s Style) IsUnderlined() bool { return s.underline }
func (s Style) SizePt() float64    { return s.sizePt }

// Color returns the explicit color, if any. Uncolored text paints black.
func (s Style) Color() (doc.Color, bool) { return s.color, s.hasColor }

// Variant resolves the font face for this style.
func (s Style) Variant() *fonts.Variant {
	return s.family.Variant(s.bold, s.italic)
}

// LineHeight is the vertical advance of a text line in this style.
func (s Style) LineHeight() Mm {
	return PtToMm(s.sizePt * s.lineSpacing)
}

// Ascent is the baseline offset from the top of the line box.
func (s Style) Ascent() Mm {
	return PtToMm(s.sizePt * float64(s.Variant().Ascent()) / 1000)
}

// TextWidth measures a string in this style.
func (s Style) TextWidth(text string) Mm {
	return PtToMm(s.Variant().TextWidthPt(fonts.Encode(text), s.sizePt))
}
