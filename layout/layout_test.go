package layout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"pdg/doc"
	"pdg/pdfobj"
)

var (
	fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fixedID   = [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
)

func testDocument(t *testing.T) *Document {
	t.Helper()
	d := NewDocument()
	d.Log = zaptest.NewLogger(t)
	d.Now = func() time.Time { return fixedTime }
	d.NewID = func() [16]byte { return fixedID }
	return d
}

// pageContents renders nothing; it extracts each page's content stream text
// in page order from an already rendered graph.
func pageContents(t *testing.T, pdf *pdfobj.Document) []string {
	t.Helper()
	pages, err := pdf.Pages()
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	out := make([]string, len(pages))
	for n := 1; n <= len(pages); n++ {
		page, ok := pdf.Resolve(pages[n]).(pdfobj.Dict)
		if !ok {
			t.Fatalf("page %d is not a dictionary", n)
		}
		stream, ok := pdf.Resolve(page["Contents"]).(pdfobj.Stream)
		if !ok {
			t.Fatalf("page %d has no content stream", n)
		}
		out[n-1] = string(stream.Data)
	}
	return out
}

func TestEmptyDocumentHasOnePage(t *testing.T) {
	d := testDocument(t)
	pdf, pages, err := d.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if pages != 1 {
		t.Fatalf("pages = %d, want 1", pages)
	}
	if _, _, err := pdf.Catalog(); err != nil {
		t.Fatalf("catalog: %v", err)
	}
}

func TestParagraphFlowsAcrossPages(t *testing.T) {
	d := testDocument(t)
	d.Paper = Size{W: 80, H: 60}
	d.Decorator = NewPageDecorator(UniformMargins(10))

	p := NewParagraph(d.DefaultStyle(), doc.AlignLeft)
	p.Append(strings.Repeat("flowing words keep coming ", 20), d.DefaultStyle())
	d.Push(p)

	pdf, pages, err := d.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if pages < 2 {
		t.Fatalf("expected the paragraph to spill onto a second page, got %d", pages)
	}
	for i, content := range pageContents(t, pdf) {
		if !strings.Contains(content, "Tj") {
			t.Fatalf("page %d carries no text", i+1)
		}
	}
}

func TestPageBreakCollapses(t *testing.T) {
	d := testDocument(t)
	d.Push(NewParagraph(d.DefaultStyle(), doc.AlignLeft).Append("first", d.DefaultStyle()))
	d.Push(NewPageBreak())
	d.Push(NewPageBreak())
	d.Push(NewParagraph(d.DefaultStyle(), doc.AlignLeft).Append("second", d.DefaultStyle()))

	pdf, pages, err := d.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if pages != 2 {
		t.Fatalf("consecutive breaks must collapse, got %d pages", pages)
	}
	contents := pageContents(t, pdf)
	if !strings.Contains(contents[0], "(first)") || !strings.Contains(contents[1], "(second)") {
		t.Fatalf("text landed on wrong pages: %q", contents)
	}
}

func TestLeadingPageBreakIsDropped(t *testing.T) {
	d := testDocument(t)
	d.Push(NewPageBreak())
	d.Push(NewParagraph(d.DefaultStyle(), doc.AlignLeft).Append("content", d.DefaultStyle()))

	_, pages, err := d.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if pages != 1 {
		t.Fatalf("a break at the top of a page must be a no-op, got %d pages", pages)
	}
}

func TestVSpaceAtPageTop(t *testing.T) {
	ctx := &Context{Page: 1, AtPageTop: true}
	area := Area{size: Size{W: 100, H: 200}}

	res, err := VSpace{H: 30}.Render(ctx, area)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.Size.H != 0 {
		t.Fatalf("plain gap at the page top must collapse, got %v", res.Size.H)
	}

	res, err = VSpace{H: 30, Force: true}.Render(ctx, area)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.Size.H != 30 {
		t.Fatalf("forced gap must keep its height at the page top, got %v", res.Size.H)
	}

	// below the page top both behave the same
	ctx.AtPageTop = false
	res, _ = VSpace{H: 30}.Render(ctx, area)
	if res.Size.H != 30 {
		t.Fatalf("gap below the page top lost its height: %v", res.Size.H)
	}
}

func TestMarkerRecordsPage(t *testing.T) {
	d := testDocument(t)
	var recorded []int
	d.Push(NewParagraph(d.DefaultStyle(), doc.AlignLeft).Append("intro", d.DefaultStyle()))
	d.Push(NewPageBreak())
	d.Push(NewMarker(func(page int) { recorded = append(recorded, page) }))
	d.Push(NewParagraph(d.DefaultStyle(), doc.AlignLeft).Append("chapter", d.DefaultStyle()))

	if _, _, err := d.Render(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(recorded) != 1 || recorded[0] != 2 {
		t.Fatalf("marker pages = %v, want [2]", recorded)
	}
}

func TestHeaderAndFooter(t *testing.T) {
	d := testDocument(t)
	style := d.DefaultStyle()
	d.Decorator = NewPageDecorator(UniformMargins(15)).
		WithHeader(3, func(page int) Element {
			return NewParagraph(style, doc.AlignLeft).Append("Quarterly Report", style)
		}).
		WithFooter(10, func(page int) Element {
			return NewParagraph(style, doc.AlignCenter).Append("confidential", style)
		})
	d.Push(NewParagraph(style, doc.AlignLeft).Append("body", style))

	pdf, _, err := d.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	content := pageContents(t, pdf)[0]
	for _, want := range []string{"(Quarterly Report)", "(confidential)", "(body)"} {
		if !strings.Contains(content, want) {
			t.Fatalf("page is missing %s:\n%s", want, content)
		}
	}
}

func TestFooterOverflowIsFatal(t *testing.T) {
	d := testDocument(t)
	style := d.DefaultStyle()
	d.Decorator = NewPageDecorator(UniformMargins(15)).
		WithFooter(2, func(page int) Element {
			return NewParagraph(style, doc.AlignLeft).
				Append(strings.Repeat("far too much footer text ", 10), style)
		})
	d.Push(NewParagraph(style, doc.AlignLeft).Append("body", style))

	_, _, err := d.Render(context.Background())
	var overflow *FooterOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected FooterOverflowError, got %v", err)
	}
	if overflow.Page != 1 {
		t.Fatalf("overflow reported on page %d, want 1", overflow.Page)
	}
}

func TestJustifiedParagraphStretchesSpaces(t *testing.T) {
	d := testDocument(t)
	d.Paper = Size{W: 80, H: 200}
	d.Decorator = NewPageDecorator(UniformMargins(10))
	style := d.DefaultStyle()
	p := NewParagraph(style, doc.AlignJustified)
	p.Append(strings.Repeat("even spread of little words ", 8), style)
	d.Push(p)

	pdf, _, err := d.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	content := pageContents(t, pdf)[0]
	stretched := false
	for _, line := range strings.Split(content, "\n") {
		if strings.HasSuffix(line, " Tw") && line != "0 Tw" {
			stretched = true
		}
	}
	if !stretched {
		t.Fatal("justified text should set a nonzero word spacing on wrapped lines")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	build := func() *Document {
		d := NewDocument()
		d.Now = func() time.Time { return fixedTime }
		d.NewID = func() [16]byte { return fixedID }
		d.Meta = Metadata{Title: "Annual Review", Author: "Ops"}
		style := d.DefaultStyle()
		d.Push(NewParagraph(style, doc.AlignLeft).Append("stable output", style))
		return d
	}

	first, _, err := build().Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, _, err := build().Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	a, err := first.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same input and injected clock must produce identical bytes")
	}
}

func TestCanceledContext(t *testing.T) {
	d := testDocument(t)
	d.Push(NewParagraph(d.DefaultStyle(), doc.AlignLeft).Append("body", d.DefaultStyle()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := d.Render(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
