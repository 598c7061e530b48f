package layout

import (
	"pdg/doc"
	"pdg/utils/images"
)

// Paragraph flows styled text into as many lines as the area allows and
// continues on following pages when it runs out of room.
type Paragraph struct {
	frags     []frag
	alignment doc.Alignment
	base      Style

	lines      []line
	wrappedFor Mm
	next       int
}

// NewParagraph builds a paragraph from pre-styled fragments.
func NewParagraph(base Style, alignment doc.Alignment) *Paragraph {
	return &Paragraph{base: base, alignment: alignment, wrappedFor: -1}
}

// Append adds a run of text in the given style.
func (p *Paragraph) Append(text string, style Style) *Paragraph {
	p.frags = append(p.frags, frag{text: text, style: style})
	return p
}

// AppendSpans adds document spans styled relative to the paragraph base.
func (p *Paragraph) AppendSpans(spans []doc.Span) *Paragraph {
	for _, s := range spans {
		p.frags = append(p.frags, frag{text: s.Text(), style: p.base.ForSpan(s)})
	}
	return p
}

func (p *Paragraph) Render(ctx *Context, area Area) (Result, error) {
	if p.wrappedFor != area.Size().W {
		p.lines = wrap(tokenize(p.frags), area.Size().W, ctx.Hyphenator)
		p.wrappedFor = area.Size().W
		p.next = 0
	}

	if len(p.lines) == 0 {
		// An empty paragraph still takes one line of vertical space.
		h := p.base.LineHeight()
		if h > area.Size().H && !ctx.AtPageTop {
			return Result{HasMore: true}, nil
		}
		return Result{Size: Size{W: area.Size().W, H: h}}, nil
	}

	var y Mm
	for p.next < len(p.lines) {
		ln := p.lines[p.next]
		lh := ln.height()
		if y+lh > area.Size().H {
			return Result{Size: Size{W: area.Size().W, H: y}, HasMore: true}, nil
		}
		p.drawLine(area, ln, y, p.next == len(p.lines)-1)
		y += lh
		p.next++
	}
	return Result{Size: Size{W: area.Size().W, H: y}}, nil
}

func (p *Paragraph) drawLine(area Area, ln line, y Mm, lastLine bool) {
	baseline := y + ln.ascent()
	x := Mm(0)
	wordSpacingPt := 0.0

	switch p.alignment {
	case doc.AlignCenter:
		x = (area.Size().W - ln.width) / 2
	case doc.AlignRight:
		x = area.Size().W - ln.width
	case doc.AlignJustified:
		if !lastLine && ln.spaces > 0 {
			wordSpacingPt = (area.Size().W - ln.width).Pt() / float64(ln.spaces)
		}
	}

	for _, f := range ln.frags {
		x += area.PrintJustifiedRun(Position{X: x, Y: baseline}, f.style, f.text, wordSpacingPt)
	}
}

// Image places a decoded image, scaled to the requested width or to the
// area width, keeping its aspect ratio.
type Image struct {
	img       *images.Decoded
	alignment doc.Alignment
	widthMm   Mm // 0 selects automatic sizing
}

func NewImage(img *images.Decoded, alignment doc.Alignment, widthMm Mm) *Image {
	return &Image{img: img, alignment: alignment, widthMm: widthMm}
}

func (e *Image) Render(ctx *Context, area Area) (Result, error) {
	w := e.widthMm
	if w <= 0 {
		// Natural size at 96 dpi, capped at the area width.
		w = Mm(float64(e.img.Width()) * 25.4 / 96)
	}
	if w > area.Size().W {
		w = area.Size().W
	}
	h := w / Mm(e.img.AspectRatio())

	if h > area.Size().H {
		if !ctx.AtPageTop {
			return Result{HasMore: true}, nil
		}
		// Full fresh page and still too tall: scale down to fit.
		h = area.Size().H
		w = h * Mm(e.img.AspectRatio())
	}

	var x Mm
	switch e.alignment {
	case doc.AlignCenter:
		x = (area.Size().W - w) / 2
	case doc.AlignRight:
		x = area.Size().W - w
	}
	if err := area.DrawImage(e.img, Position{X: x, Y: 0}, Size{W: w, H: h}); err != nil {
		return Result{}, err
	}
	return Result{Size: Size{W: area.Size().W, H: h}}, nil
}

// PageBreak forces following content onto a fresh page. On a page that is
// still empty it does nothing, so consecutive breaks collapse.
type PageBreak struct {
	done bool
}

func NewPageBreak() *PageBreak { return &PageBreak{} }

func (b *PageBreak) Render(ctx *Context, area Area) (Result, error) {
	if b.done || ctx.AtPageTop {
		b.done = true
		return Result{}, nil
	}
	b.done = true
	return Result{HasMore: true}, nil
}

// Marker records the page it lands on. It occupies no space.
type Marker struct {
	fn func(page int)
}

func NewMarker(fn func(page int)) *Marker { return &Marker{fn: fn} }

func (m *Marker) Render(ctx *Context, area Area) (Result, error) {
	m.fn(ctx.Page)
	return Result{}, nil
}

// VSpace is a fixed vertical gap. Gaps at the top of a page are dropped
// unless Force is set; a forced gap offsets content below the page top, as
// on a cover page.
type VSpace struct {
	H     Mm
	Force bool
}

func (v VSpace) Render(ctx *Context, area Area) (Result, error) {
	if ctx.AtPageTop && !v.Force {
		return Result{}, nil
	}
	h := v.H
	if h > area.Size().H {
		h = area.Size().H
	}
	return Result{Size: Size{W: area.Size().W, H: h}}, nil
}
