package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"pdg/doc"
	"pdg/markup"
	"pdg/pdfobj"
)

var (
	fixedTime = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	fixedID   = [16]byte{0xde, 0xad, 0xbe, 0xef, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
)

func markupBlock(t *testing.T, text string) doc.Block {
	t.Helper()
	spans, err := markup.Parse(text)
	if err != nil {
		t.Fatalf("markup: %v", err)
	}
	return doc.ParagraphBlock(doc.NewParagraph(spans...))
}

func sampleBuilder(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder().
		WithLogger(zaptest.NewLogger(t)).
		WithClock(func() time.Time { return fixedTime }).
		WithIDSource(func() [16]byte { return fixedID }).
		WithCover(doc.NewCover("Operations Review").WithSubtitle("Fiscal Year 2024"))

	for _, title := range []string{"Summary", "Findings", "Appendix"} {
		section := doc.NewSectionBuilder(title).
			StartOnNewPage(true).
			AutoIdentifier(true).
			PushBlock(markupBlock(t, "Opening remarks with **key figures** and *context*.")).
			PushBlock(markupBlock(t, strings.Repeat("Body text continues with routine detail. ", 12))).
			Build()
		b.AddSection(section)
	}
	return b
}

func pageText(t *testing.T, data []byte, page int) string {
	t.Helper()
	pdf, err := pdfobj.Load(data)
	if err != nil {
		t.Fatalf("parsing artifact: %v", err)
	}
	pages, err := pdf.Pages()
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	node, ok := pdf.Resolve(pages[page]).(pdfobj.Dict)
	if !ok {
		t.Fatalf("page %d missing", page)
	}
	stream, ok := pdf.Resolve(node["Contents"]).(pdfobj.Stream)
	if !ok {
		t.Fatalf("page %d has no contents", page)
	}
	return string(stream.Data)
}

func TestRenderWithTOCResolvesPages(t *testing.T) {
	b := sampleBuilder(t).IncludePrintedTOC(true).TrackSectionPages(true)
	out, err := b.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(out.SectionPages) != 3 {
		t.Fatalf("expected 3 tracked sections, got %d", len(out.SectionPages))
	}
	// Cover is page 1, the TOC starts on page 2, sections follow.
	const tocPage = 2
	prev := 0
	for i, p := range out.SectionPages {
		if p == nil {
			t.Fatalf("section %d was never placed", i)
		}
		if *p <= tocPage {
			t.Fatalf("section %d starts on page %d, must be after the TOC", i, *p)
		}
		if *p < prev {
			t.Fatalf("section pages must be non-decreasing: %d after %d", *p, prev)
		}
		prev = *p
	}

	toc := pageText(t, out.Bytes, tocPage)
	if !strings.Contains(toc, "(Summary)") {
		t.Fatalf("TOC is missing the first section title:\n%s", toc)
	}
	if !strings.Contains(toc, "(3)") {
		t.Fatalf("TOC should print the first section's page number:\n%s", toc)
	}
	if strings.Contains(toc, "(-)") {
		t.Fatal("final TOC must not contain dash placeholders")
	}
}

func TestCoverOnlyDocumentIsOnePage(t *testing.T) {
	b := NewBuilder().
		WithLogger(zaptest.NewLogger(t)).
		WithClock(func() time.Time { return fixedTime }).
		WithIDSource(func() [16]byte { return fixedID }).
		WithCover(doc.NewCover("Operations Review").WithSubtitle("Fiscal Year 2024"))

	out, err := b.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	pdf, err := pdfobj.Load(out.Bytes)
	if err != nil {
		t.Fatalf("parsing artifact: %v", err)
	}
	pages, err := pdf.Pages()
	if err != nil {
		t.Fatalf("pages: %v", err)
	}
	// no sections and no TOC follow, so the cover must not force a break
	if len(pages) != 1 {
		t.Fatalf("cover-only document produced %d pages, want 1", len(pages))
	}
	if !strings.Contains(pageText(t, out.Bytes, 1), "(Operations Review)") {
		t.Fatal("cover title missing from the only page")
	}
}

func TestRenderWithoutTOCIsSinglePass(t *testing.T) {
	discoveries := 0
	b := sampleBuilder(t).
		TrackSectionPages(true).
		WithDebugSink(func(name string, data []byte) {
			if name == "discovery.pdf" {
				discoveries++
			}
		})

	out, err := b.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if discoveries != 0 {
		t.Fatal("no discovery pass expected without a printed TOC")
	}
	if out.SectionPages[0] == nil || *out.SectionPages[0] != 2 {
		t.Fatalf("first section should start on page 2 after the cover, got %v", out.SectionPages[0])
	}
}

func TestDiscoveryPassFeedsDebugSink(t *testing.T) {
	var names []string
	b := sampleBuilder(t).
		IncludePrintedTOC(true).
		WithDebugSink(func(name string, data []byte) {
			names = append(names, name)
			if len(data) == 0 {
				t.Error("debug artifact is empty")
			}
		})
	if _, err := b.Render(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(names) != 1 || names[0] != "discovery.pdf" {
		t.Fatalf("expected one discovery artifact, got %v", names)
	}
}

func TestRenderDeterminism(t *testing.T) {
	first, err := sampleBuilder(t).IncludePrintedTOC(true).Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := sampleBuilder(t).IncludePrintedTOC(true).Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(first.Bytes, second.Bytes) {
		t.Fatal("fixed clock and ID source must give identical bytes")
	}
}

func TestTOCSkippedWithoutSections(t *testing.T) {
	b := NewBuilder().
		WithLogger(zaptest.NewLogger(t)).
		WithClock(func() time.Time { return fixedTime }).
		WithIDSource(func() [16]byte { return fixedID }).
		WithCover(doc.NewCover("Empty Shell")).
		IncludePrintedTOC(true)

	out, err := b.Render(context.Background())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	content := pageText(t, out.Bytes, 1)
	if !strings.Contains(content, "(Empty Shell)") {
		t.Fatalf("cover title missing:\n%s", content)
	}
}

func TestImageDecodeFailureNamesBlock(t *testing.T) {
	section := doc.NewSection("Charts").
		WithBlock(doc.ImageBlockOf(doc.NewImage(doc.BytesSource([]byte("not an image")))))
	b := NewBuilder().
		WithLogger(zaptest.NewLogger(t)).
		AddSection(section)

	_, err := b.Render(context.Background())
	if err == nil {
		t.Fatal("expected a decode error")
	}
	if !strings.Contains(err.Error(), "section 0 (Charts)") || !strings.Contains(err.Error(), "block 0") {
		t.Fatalf("error should name the section and block: %v", err)
	}
}

func TestMissingFontFamilyIsFatalBeforeLayout(t *testing.T) {
	b := sampleBuilder(t).WithFontFamily("NoSuchFamily").WithFontsDir(t.TempDir())
	_, err := b.Render(context.Background())
	if err == nil || !strings.Contains(err.Error(), "NoSuchFamily") {
		t.Fatalf("expected a font resolution error, got %v", err)
	}
}

func TestMissingHyphenationPatternsIsFatal(t *testing.T) {
	b := sampleBuilder(t).WithHyphenationPatterns("/no/such/patterns.pat")
	_, err := b.Render(context.Background())
	if err == nil || !strings.Contains(err.Error(), "/no/such/patterns.pat") {
		t.Fatalf("expected a pattern load error, got %v", err)
	}
}
