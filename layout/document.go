package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pdg/fonts"
	"pdg/pdfobj"
)

// maxPages bounds a single render. Elements are stateful and a buggy one
// could report HasMore forever.
const maxPages = 10000

// Document is a sequence of elements flowed onto decorated pages.
type Document struct {
	Paper      Size
	Decorator  *PageDecorator
	Fonts      *fonts.Family
	Hyphenator *Hyphenator
	Meta       Metadata
	Log        *zap.Logger

	// Now and NewID default to the wall clock and random identifiers;
	// tests inject fixed values to get byte-identical output.
	Now   func() time.Time
	NewID func() [16]byte

	elements []Element
}

// NewDocument creates an A4 document with 20mm margins and the core font
// family.
func NewDocument() *Document {
	return &Document{
		Paper:     A4,
		Decorator: NewPageDecorator(UniformMargins(20)),
		Fonts:     fonts.CoreFamily(),
	}
}

// Push appends an element to the flow.
func (d *Document) Push(e Element) {
	d.elements = append(d.elements, e)
}

// DefaultStyle returns the base text style for this document's font family.
func (d *Document) DefaultStyle() Style {
	return DefaultStyle(d.Fonts)
}

// Render lays out all elements and returns the finished object graph
// together with the number of pages produced. Element state is consumed;
// build a fresh Document for another pass.
func (d *Document) Render(ctx context.Context) (*pdfobj.Document, int, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	newID := func() [16]byte { return [16]byte(uuid.New()) }
	if d.NewID != nil {
		newID = d.NewID
	}

	w := newDocWriter(d.Paper)
	pending := d.elements
	page := 0

	for first := true; first || len(pending) > 0; first = false {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		page++
		if page > maxPages {
			return nil, 0, fmt.Errorf("render aborted after %d pages, an element keeps requesting more room", maxPages)
		}

		pw := w.newPage()
		ectx := &Context{Page: page, AtPageTop: true, Hyphenator: d.Hyphenator, Log: log}
		area, err := d.Decorator.decorate(ectx, pw, d.Paper)
		if err != nil {
			return nil, 0, err
		}

		for len(pending) > 0 {
			res, err := pending[0].Render(ectx, area)
			if err != nil {
				return nil, 0, fmt.Errorf("rendering page %d: %w", page, err)
			}
			if res.Size.H > 0 {
				ectx.AtPageTop = false
			}
			area = area.ShrinkTop(res.Size.H)
			if res.HasMore {
				if ectx.AtPageTop && res.Size.H == 0 {
					return nil, 0, fmt.Errorf("element does not fit on an empty page %d", page)
				}
				break
			}
			pending = pending[1:]
		}
		pw.close()
	}

	return d.finish(w, now(), newID(), page)
}

func (d *Document) finish(w *docWriter, now time.Time, id [16]byte, pages int) (*pdfobj.Document, int, error) {
	kids := make(pdfobj.Array, len(w.pageRefs))
	for i, ref := range w.pageRefs {
		kids[i] = ref
	}
	w.pdf.SetObject(w.pagesID, pdfobj.Dict{
		"Type":  pdfobj.Name("Pages"),
		"Kids":  kids,
		"Count": pdfobj.Integer(len(kids)),
	})

	catalog := pdfobj.Dict{
		"Type":  pdfobj.Name("Catalog"),
		"Pages": w.pagesID,
	}
	writeXMP(w.pdf, catalog, d.Meta, now, id)
	w.pdf.Trailer()["Root"] = w.pdf.AddObject(catalog)

	writeInfo(w.pdf, d.Meta, now)
	writeID(w.pdf, id)
	return w.pdf, pages, nil
}
