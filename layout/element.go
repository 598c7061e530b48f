package layout

import (
	"go.uber.org/zap"

	"pdg/utils/images"
)

// Context carries per-render state handed to every element.
type Context struct {
	// Page is the 1-based number of the page currently being laid out.
	Page int
	// AtPageTop reports whether nothing has been placed in the content
	// region of the current page yet.
	AtPageTop bool
	// Hyphenator breaks words at line ends when non-nil.
	Hyphenator *Hyphenator
	// Log receives layout diagnostics.
	Log *zap.Logger
}

// Result reports how much of the area an element consumed.
type Result struct {
	// Size is the consumed extent. Only the height participates in flow
	// layout; the width is informational.
	Size Size
	// HasMore is set when the element did not fit completely and wants to
	// continue on the next page.
	HasMore bool
}

// Element is anything that can be placed into an area. Elements that span
// pages keep their position between calls and are rendered repeatedly until
// HasMore comes back false. Element state is valid for a single render pass.
type Element interface {
	Render(ctx *Context, area Area) (Result, error)
}

// Area is a rectangular region of a page an element may draw into. All
// coordinates passed to drawing methods are relative to the area origin.
type Area struct {
	page   *pageWriter
	origin Position
	size   Size
}

// Size returns the area extent.
func (a Area) Size() Size { return a.size }

// ShrinkTop returns the area with its top edge moved down by h.
func (a Area) ShrinkTop(h Mm) Area {
	if h > a.size.H {
		h = a.size.H
	}
	a.origin.Y += h
	a.size.H -= h
	return a
}

// Band splits off the top h millimeters as a separate area.
func (a Area) Band(h Mm) Area {
	if h > a.size.H {
		h = a.size.H
	}
	a.size.H = h
	return a
}

// Indent returns the area narrowed by left and right offsets.
func (a Area) Indent(left, right Mm) Area {
	a.origin.X += left
	a.size.W -= left + right
	if a.size.W < 0 {
		a.size.W = 0
	}
	return a
}

// PrintRun draws text at the given baseline position in the given style and
// returns the advance width.
func (a Area) PrintRun(pos Position, style Style, text string) Mm {
	return a.page.printRun(a.abs(pos), style, text, 0)
}

// PrintJustifiedRun draws text with extra word spacing distributed over the
// space characters of the run.
func (a Area) PrintJustifiedRun(pos Position, style Style, text string, wordSpacingPt float64) Mm {
	return a.page.printRun(a.abs(pos), style, text, wordSpacingPt)
}

// DrawLine strokes a straight line of the given width in points.
func (a Area) DrawLine(from, to Position, widthPt float64, style Style) {
	a.page.drawLine(a.abs(from), a.abs(to), widthPt, style)
}

// DrawImage places a decoded image with its top left corner at pos.
func (a Area) DrawImage(img *images.Decoded, pos Position, size Size) error {
	return a.page.drawImage(img, a.abs(pos), size)
}

func (a Area) abs(p Position) Position {
	return Position{X: a.origin.X + p.X, Y: a.origin.Y + p.Y}
}
