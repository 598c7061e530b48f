package docfile

import (
	"fmt"

	"pdg/doc"
	"pdg/utils/debug"
)

// DebugDump renders the parsed description as an indented tree, suitable for
// inclusion in a debug report. Markup is already expanded, so every span is
// shown with its effective styles.
func (d *Description) DebugDump() string {
	tw := debug.NewTreeWriter()

	tw.Line(0, "document")
	tw.TextBlock(1, "title", d.Title)
	if len(d.Author) > 0 {
		tw.TextBlock(1, "author", d.Author)
	}

	if d.Cover != nil {
		tw.Line(1, "cover")
		tw.TextBlock(2, "title", d.Cover.Title())
		if sub := d.Cover.Subtitle(); len(sub) > 0 {
			tw.TextBlock(2, "subtitle", sub)
		}
		dumpBlocks(tw, 2, d.Cover.Blocks())
	}

	for i, s := range d.Sections {
		tw.Line(1, "section %d", i)
		tw.TextBlock(2, "title", s.Title())
		if id := s.Identifier(); len(id) > 0 {
			tw.TextBlock(2, "id", id)
		}
		dumpBlocks(tw, 2, s.Blocks())
	}
	return tw.String()
}

func dumpBlocks(tw *debug.TreeWriter, depth int, blocks []doc.Block) {
	for _, b := range blocks {
		switch b.Kind() {
		case doc.BlockParagraph:
			tw.Line(depth, "paragraph (%s)", b.Paragraph().Alignment())
			dumpSpans(tw, depth+1, b.Paragraph().Spans())
		case doc.BlockImage:
			img := b.Image()
			tw.Line(depth, "image (%s)", img.Alignment())
			tw.TextBlock(depth+1, "source", img.Source().Describe())
			if w := img.WidthMm(); w > 0 {
				tw.Line(depth+1, "width_mm: %g", w)
			}
			if caption, ok := img.Caption(); ok {
				tw.Line(depth+1, "caption")
				dumpSpans(tw, depth+2, caption.Spans())
			}
		case doc.BlockPageBreak:
			tw.Line(depth, "page break")
		}
	}
}

func dumpSpans(tw *debug.TreeWriter, depth int, spans []doc.Span) {
	for _, s := range spans {
		tw.TextBlock(depth, spanStyles(s), s.Text())
	}
}

func spanStyles(s doc.Span) string {
	styles := "plain"
	switch {
	case s.IsBold() && s.IsItalic():
		styles = "bold italic"
	case s.IsBold():
		styles = "bold"
	case s.IsItalic():
		styles = "italic"
	}
	if s.IsUnderlined() {
		styles += " underline"
	}
	if c, ok := s.Color(); ok {
		styles += fmt.Sprintf(" %s", c)
	}
	return styles
}
