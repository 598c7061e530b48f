package render

import (
	"strconv"

	"pdg/layout"
)

// tocRow is one table of contents entry. A nil page prints as a dash, which
// is what the discovery pass sees for every row.
type tocRow struct {
	title string
	page  *int
}

// tocElement prints one row per section: title on the left, page number
// right-aligned. Every row occupies exactly one line height regardless of
// the number's digit count, so swapping placeholders for real numbers
// between passes never changes the element's extent.
type tocElement struct {
	style layout.Style
	rows  []tocRow
	next  int
}

func newTOCElement(style layout.Style, rows []tocRow) *tocElement {
	return &tocElement{style: style, rows: rows}
}

func (e *tocElement) Render(ctx *layout.Context, area layout.Area) (layout.Result, error) {
	rowH := e.style.LineHeight()
	ascent := e.style.Ascent()

	var y layout.Mm
	for e.next < len(e.rows) {
		if y+rowH > area.Size().H {
			return layout.Result{Size: layout.Size{W: area.Size().W, H: y}, HasMore: true}, nil
		}
		row := e.rows[e.next]

		number := "-"
		if row.page != nil {
			number = strconv.Itoa(*row.page)
		}
		numberW := e.style.TextWidth(number)

		pos := layout.Position{X: 0, Y: y + ascent}
		area.PrintRun(pos, e.style, row.title)
		area.PrintRun(layout.Position{X: area.Size().W - numberW, Y: y + ascent}, e.style, number)

		y += rowH
		e.next++
	}
	return layout.Result{Size: layout.Size{W: area.Size().W, H: y}}, nil
}
