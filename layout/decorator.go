package layout

import (
	"fmt"
)

// PageDecorator reserves margins and draws the recurring page furniture. The
// header sizes itself; the footer lives in a fixed-height band above the
// bottom margin and must fit it completely.
type PageDecorator struct {
	margins      Margins
	header       func(page int) Element
	headerGap    Mm
	footerHeight Mm
	footer       func(page int) Element
}

// NewPageDecorator creates a decorator with the given margins and no header
// or footer.
func NewPageDecorator(margins Margins) *PageDecorator {
	return &PageDecorator{margins: margins}
}

// WithHeader installs a per-page header factory. gap is the space kept
// between the header and the content below it.
func (d *PageDecorator) WithHeader(gap Mm, fn func(page int) Element) *PageDecorator {
	d.header = fn
	d.headerGap = gap
	return d
}

// WithFooter reserves height millimeters at the bottom of every page and
// installs the factory producing its content.
func (d *PageDecorator) WithFooter(height Mm, fn func(page int) Element) *PageDecorator {
	d.footer = fn
	d.footerHeight = height
	return d
}

// Margins returns the configured page margins.
func (d *PageDecorator) Margins() Margins { return d.margins }

// FooterOverflowError reports footer content that does not fit the band
// reserved for it. This aborts rendering: a silently clipped footer would
// corrupt every page.
type FooterOverflowError struct {
	Page     int
	Reserved Mm
	Needed   Mm
}

func (e *FooterOverflowError) Error() string {
	return fmt.Sprintf("footer on page %d needs %.1fmm but only %.1fmm is reserved",
		e.Page, float64(e.Needed), float64(e.Reserved))
}

// decorate draws the header and footer and returns the remaining content
// area for the page.
func (d *PageDecorator) decorate(ctx *Context, pw *pageWriter, paper Size) (Area, error) {
	area := Area{
		page:   pw,
		origin: Position{X: d.margins.Left, Y: d.margins.Top},
		size: Size{
			W: paper.W - d.margins.Left - d.margins.Right,
			H: paper.H - d.margins.Top - d.margins.Bottom,
		},
	}

	if d.footerHeight > 0 {
		band := area
		band.origin.Y = paper.H - d.margins.Bottom - d.footerHeight
		band.size.H = d.footerHeight
		area.size.H -= d.footerHeight

		if d.footer != nil {
			res, err := d.footer(ctx.Page).Render(ctx, band)
			if err != nil {
				return Area{}, fmt.Errorf("rendering footer on page %d: %w", ctx.Page, err)
			}
			if res.HasMore {
				return Area{}, &FooterOverflowError{Page: ctx.Page, Reserved: d.footerHeight, Needed: d.footerHeight + res.Size.H}
			}
			if res.Size.H > d.footerHeight {
				return Area{}, &FooterOverflowError{Page: ctx.Page, Reserved: d.footerHeight, Needed: res.Size.H}
			}
		}
	}

	if d.header != nil {
		res, err := d.header(ctx.Page).Render(ctx, area)
		if err != nil {
			return Area{}, fmt.Errorf("rendering header on page %d: %w", ctx.Page, err)
		}
		area = area.ShrinkTop(res.Size.H + d.headerGap)
	}
	return area, nil
}
