// Package layout arranges elements on pages and renders them into a PDF
// object graph. Geometry is expressed in millimeters with the origin at the
// top left corner of the page; the writer converts to PDF user space.
package layout

// Mm is a length in millimeters.
type Mm float64

// Pt converts to PostScript points (1/72 inch).
func (m Mm) Pt() float64 { return float64(m) * 72 / 25.4 }

// PtToMm converts points back to millimeters.
func PtToMm(pt float64) Mm { return Mm(pt * 25.4 / 72) }

// Position is a point on the page, millimeters from the top left corner.
type Position struct {
	X, Y Mm
}

// Size is a width and height in millimeters.
type Size struct {
	W, H Mm
}

// Paper sizes in portrait orientation.
var (
	A4     = Size{W: 210, H: 297}
	A5     = Size{W: 148, H: 210}
	Letter = Size{W: 215.9, H: 279.4}
)

// Margins are the distances kept clear on each page edge.
type Margins struct {
	Top, Right, Bottom, Left Mm
}

// UniformMargins returns equal margins on all sides.
func UniformMargins(m Mm) Margins {
	return Margins{Top: m, Right: m, Bottom: m, Left: m}
}
