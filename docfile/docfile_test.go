package docfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdg/doc"
)

const sampleDescription = `title: Operations Review
author: Jane Doe
cover:
  title: Operations Review
  subtitle: Fiscal Year 2024
  blocks:
    - text: "Prepared by the **platform** team"
      align: center
sections:
  - title: Summary
    start_on_new_page: true
    blocks:
      - text: "Revenue was *up* this quarter."
      - text: "[color=#FF0000]{Losses}[color=#00AA00]{ and gains} balanced out."
        align: justified
  - title: Charts
    id: charts-2024
    blocks:
      - image: charts/revenue.png
        width_mm: 120
        caption: "Quarterly *revenue*"
        align: center
      - page_break: true
      - text: "Appendix follows."
render:
  toc: true
  toc_title: Contents
  bookmarks: false
  paper: a5
  margins_mm: 15
`

func TestParseFullDescription(t *testing.T) {
	d, err := Parse([]byte(sampleDescription))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if d.Title != "Operations Review" || d.Author != "Jane Doe" {
		t.Fatalf("metadata mismatch: %q by %q", d.Title, d.Author)
	}

	if d.Cover == nil {
		t.Fatal("cover missing")
	}
	if d.Cover.Subtitle() != "Fiscal Year 2024" {
		t.Fatalf("cover subtitle = %q", d.Cover.Subtitle())
	}
	blocks := d.Cover.Blocks()
	if len(blocks) != 1 || blocks[0].Kind() != doc.BlockParagraph {
		t.Fatalf("cover blocks: %+v", blocks)
	}
	spans := blocks[0].Paragraph().Spans()
	if len(spans) != 3 || !spans[1].IsBold() || spans[1].Text() != "platform" {
		t.Fatalf("cover markup not expanded: %+v", spans)
	}

	if len(d.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(d.Sections))
	}

	first := d.Sections[0]
	if first.Identifier() != "summary" {
		t.Fatalf("auto identifier = %q, want summary", first.Identifier())
	}
	// start_on_new_page injects a leading page break
	if first.Blocks()[0].Kind() != doc.BlockPageBreak {
		t.Fatal("section requested a new page but has no leading break")
	}
	colored := first.Blocks()[2].Paragraph()
	if colored.Alignment() != doc.AlignJustified {
		t.Fatalf("alignment = %v, want justified", colored.Alignment())
	}
	c, ok := colored.Spans()[0].Color()
	if !ok || c != (doc.Color{R: 0xFF}) {
		t.Fatalf("color span not parsed: %+v", colored.Spans()[0])
	}

	second := d.Sections[1]
	if second.Identifier() != "charts-2024" {
		t.Fatalf("explicit identifier lost: %q", second.Identifier())
	}
	img := second.Blocks()[0]
	if img.Kind() != doc.BlockImage {
		t.Fatalf("first block kind = %v", img.Kind())
	}
	if img.Image().Source().Path() != "charts/revenue.png" || img.Image().WidthMm() != 120 {
		t.Fatalf("image block: %+v", img.Image())
	}
	caption, ok := img.Image().Caption()
	if !ok || len(caption.Spans()) != 2 || !caption.Spans()[1].IsItalic() {
		t.Fatalf("caption not expanded: %+v", caption)
	}
	if second.Blocks()[1].Kind() != doc.BlockPageBreak {
		t.Fatal("explicit page break lost")
	}

	opts := d.Options
	if opts.TOC == nil || !*opts.TOC || opts.TOCTitle != "Contents" {
		t.Fatalf("TOC options: %+v", opts)
	}
	if opts.Bookmarks == nil || *opts.Bookmarks {
		t.Fatalf("bookmarks override lost: %+v", opts.Bookmarks)
	}
	if opts.Paper != "a5" || opts.MarginsMm == nil || *opts.MarginsMm != 15 {
		t.Fatalf("paper/margins overrides: %+v", opts)
	}
}

func TestParseLeavesUnsetOptionsNil(t *testing.T) {
	d, err := Parse([]byte("title: Minimal\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Options.TOC != nil || d.Options.Bookmarks != nil || d.Options.MarginsMm != nil {
		t.Fatalf("unset options must stay nil: %+v", d.Options)
	}
	if d.Cover != nil || len(d.Sections) != 0 {
		t.Fatal("minimal description should carry no content")
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"missing title", "author: nobody\n", "title is required"},
		{"unknown field", "title: T\nchapters: []\n", "chapters"},
		{"section without title", "title: T\nsections:\n  - blocks: []\n", "section 0"},
		{"ambiguous block", "title: T\nsections:\n  - title: S\n    blocks:\n      - text: a\n        image: b.png\n", "exactly one of"},
		{"empty block", "title: T\nsections:\n  - title: S\n    blocks:\n      - align: center\n", "exactly one of"},
		{"bad alignment", "title: T\nsections:\n  - title: S\n    blocks:\n      - text: a\n        align: middle\n", "unknown alignment 'middle'"},
		{"cover without title", "title: T\ncover:\n  subtitle: S\n", "cover: title is required"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("error %q does not mention %q", err, c.want)
			}
		})
	}
}

func TestParseMarkupErrorCarriesPosition(t *testing.T) {
	content := "title: T\nsections:\n  - title: Summary\n    blocks:\n      - text: ok\n      - text: \"broken **bold\"\n"
	_, err := Parse([]byte(content))
	if err == nil {
		t.Fatal("expected a markup error")
	}
	msg := err.Error()
	for _, part := range []string{"section 0 (Summary)", "block 1", "markup error at byte"} {
		if !strings.Contains(msg, part) {
			t.Fatalf("error %q does not mention %q", msg, part)
		}
	}
}

func TestDebugDump(t *testing.T) {
	d, err := Parse([]byte(sampleDescription))
	if err != nil {
		t.Fatal(err)
	}
	dump := d.DebugDump()
	for _, part := range []string{
		"title: \"Operations Review\"",
		"section 0",
		"id: \"summary\"",
		"bold: \"platform\"",
		"plain #FF0000: \"Losses\"",
		"image (center)",
		"width_mm: 120",
		"page break",
	} {
		if !strings.Contains(dump, part) {
			t.Fatalf("dump is missing %q:\n%s", part, dump)
		}
	}
}

func TestLoadReportsFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := os.WriteFile(path, []byte("author: nobody\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("load error should name the file: %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file must be an error")
	}
}
