package render

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"pdg/doc"
	"pdg/fonts"
	"pdg/layout"
	"pdg/utils/images"
)

// sectionTracker records the first page each section appears on during one
// pass. Later sightings of the same section are ignored; a section can only
// start once. The tracker lives for a single pass and is never shared.
type sectionTracker struct {
	pages []*int
}

func newSectionTracker(n int) *sectionTracker {
	return &sectionTracker{pages: make([]*int, n)}
}

func (t *sectionTracker) record(section, page int) {
	if t.pages[section] == nil {
		p := page
		t.pages[section] = &p
	}
}

// preparedSection is a section with its images decoded. Both passes lay out
// the same prepared content, which keeps their pagination identical.
type preparedSection struct {
	section doc.Section
	blocks  []preparedBlock
}

type preparedBlock struct {
	kind  doc.BlockKind
	para  doc.RichParagraph
	image doc.ImageBlock
	img   *images.Decoded
}

// Render runs the pipeline and returns the finished artifact.
func (b *Builder) Render(ctx context.Context) (*Rendered, error) {
	log := b.log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("render")

	family, err := b.loadFonts()
	if err != nil {
		return nil, err
	}
	var hyphenator *layout.Hyphenator
	if b.hyphenPath != "" {
		hyphenator, err = layout.LoadHyphenator(b.hyphenPath)
		if err != nil {
			return nil, err
		}
	}

	cover, sections, err := b.prepareContent()
	if err != nil {
		return nil, err
	}

	needTOC := b.includeTOC && len(b.sections) > 0
	if b.includeTOC && len(b.sections) == 0 {
		log.Debug("TOC requested for a document without sections, skipping")
	}

	var discovered []*int
	if needTOC {
		tracker := newSectionTracker(len(sections))
		d := b.buildDocument(family, hyphenator, log, cover, sections, needTOC, nil, tracker)
		pdf, pages, err := d.Render(ctx)
		if err != nil {
			return nil, fmt.Errorf("discovery pass: %w", err)
		}
		discovered = tracker.pages
		log.Debug("discovery pass finished", zap.Int("pages", pages))
		if b.debugSink != nil {
			if data, err := pdf.Bytes(); err == nil {
				b.debugSink("discovery.pdf", data)
			}
		}
	}

	tracker := newSectionTracker(len(sections))
	d := b.buildDocument(family, hyphenator, log, cover, sections, needTOC, discovered, tracker)
	pdf, pages, err := d.Render(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("final pass finished", zap.Int("pages", pages))

	if needTOC {
		for i := range sections {
			if diverged(discovered[i], tracker.pages[i]) {
				log.Warn("section moved between passes, printed TOC may be stale",
					zap.Int("section", i),
					zap.String("title", sections[i].section.Title()),
					zap.Intp("discovered", discovered[i]),
					zap.Intp("final", tracker.pages[i]))
			}
		}
	}

	data, err := pdf.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serializing artifact: %w", err)
	}
	out := &Rendered{Bytes: data}
	if b.trackPages {
		out.SectionPages = tracker.pages
	}
	return out, nil
}

func diverged(a, b *int) bool {
	if (a == nil) != (b == nil) {
		return true
	}
	return a != nil && *a != *b
}

func (b *Builder) loadFonts() (*fonts.Family, error) {
	if b.fontFamily == "" {
		return fonts.CoreFamily(), nil
	}
	return fonts.FindFamily(b.fontsDir, b.fontFamily)
}

// prepareContent decodes every image exactly once so both passes see the
// same blocks. Decode failures are fatal and name the offending block.
func (b *Builder) prepareContent() ([]preparedBlock, []preparedSection, error) {
	var cover []preparedBlock
	if b.cover != nil {
		blocks, err := b.prepareBlocks(b.cover.Blocks(), "cover")
		if err != nil {
			return nil, nil, err
		}
		cover = blocks
	}

	sections := make([]preparedSection, 0, len(b.sections))
	for i, s := range b.sections {
		where := fmt.Sprintf("section %d (%s)", i, s.Title())
		blocks, err := b.prepareBlocks(s.Blocks(), where)
		if err != nil {
			return nil, nil, err
		}
		sections = append(sections, preparedSection{section: s, blocks: blocks})
	}
	return cover, sections, nil
}

func (b *Builder) prepareBlocks(blocks []doc.Block, where string) ([]preparedBlock, error) {
	out := make([]preparedBlock, 0, len(blocks))
	for i, block := range blocks {
		pb := preparedBlock{kind: block.Kind()}
		switch block.Kind() {
		case doc.BlockParagraph:
			pb.para = block.Paragraph()
		case doc.BlockImage:
			pb.image = block.Image()
			img, err := decodeImageBlock(pb.image)
			if err != nil {
				return nil, fmt.Errorf("%s, block %d: %w", where, i, err)
			}
			pb.img = img
		}
		out = append(out, pb)
	}
	return out, nil
}

func decodeImageBlock(block doc.ImageBlock) (*images.Decoded, error) {
	src := block.Source()
	data := src.Bytes()
	if src.Kind() == doc.ImageSourcePath {
		var err error
		data, err = os.ReadFile(src.Path())
		if err != nil {
			return nil, fmt.Errorf("reading image %s: %w", src.Path(), err)
		}
	}
	return images.Decode(data, src.Describe())
}

// buildDocument assembles the element sequence for one pass. pages carries
// the discovery numbers for the TOC, nil during discovery itself.
func (b *Builder) buildDocument(family *fonts.Family, hyph *layout.Hyphenator, log *zap.Logger,
	cover []preparedBlock, sections []preparedSection, withTOC bool, pages []*int, tracker *sectionTracker) *layout.Document {

	d := layout.NewDocument()
	d.Paper = b.paper
	d.Fonts = family
	d.Hyphenator = hyph
	d.Meta = b.meta
	d.Log = log
	if b.clock != nil {
		d.Now = b.clock
	}
	if b.idSource != nil {
		d.NewID = b.idSource
	}

	d.Decorator = layout.NewPageDecorator(b.margins)
	if b.header != nil {
		d.Decorator.WithHeader(b.headerGap, b.header)
	}
	if b.footer != nil {
		d.Decorator.WithFooter(b.footerHeight, b.footer)
	}

	base := layout.DefaultStyle(family).WithSizePt(b.baseSizePt).WithLineSpacing(b.lineSpacing)

	if b.cover != nil {
		b.pushCover(d, base, cover)
		// nothing follows on a cover-only document, no break needed
		if withTOC || len(sections) > 0 {
			d.Push(layout.NewPageBreak())
		}
	}

	if withTOC {
		rows := make([]tocRow, len(sections))
		for i, s := range sections {
			var page *int
			if pages != nil {
				page = pages[i]
			}
			rows[i] = tocRow{title: s.section.Title(), page: page}
		}
		if b.tocTitle != "" {
			d.Push(layout.NewParagraph(base.WithSizePt(18).WithBold(true), doc.AlignLeft).
				Append(b.tocTitle, base.WithSizePt(18).WithBold(true)))
			d.Push(layout.VSpace{H: 6})
		}
		d.Push(newTOCElement(base, rows))
		d.Push(layout.NewPageBreak())
	}

	track := withTOC || b.trackPages
	for i, s := range sections {
		blocks := s.blocks
		if len(blocks) > 0 && blocks[0].kind == doc.BlockPageBreak {
			d.Push(layout.NewPageBreak())
			blocks = blocks[1:]
		}
		if track {
			index := i
			d.Push(layout.NewMarker(func(page int) { tracker.record(index, page) }))
		}
		if title := s.section.Title(); title != "" {
			heading := base.WithSizePt(16).WithBold(true)
			d.Push(layout.NewParagraph(heading, doc.AlignLeft).Append(title, heading))
			d.Push(layout.VSpace{H: 4})
		}
		b.pushBlocks(d, base, blocks)
	}
	return d
}

func (b *Builder) pushCover(d *layout.Document, base layout.Style, blocks []preparedBlock) {
	title := base.WithSizePt(28).WithBold(true)
	d.Push(layout.VSpace{H: 60, Force: true})
	d.Push(layout.NewParagraph(title, doc.AlignCenter).Append(b.cover.Title(), title))
	if sub := b.cover.Subtitle(); sub != "" {
		subtitle := base.WithSizePt(16)
		d.Push(layout.VSpace{H: 8})
		d.Push(layout.NewParagraph(subtitle, doc.AlignCenter).Append(sub, subtitle))
	}
	if len(blocks) > 0 {
		d.Push(layout.VSpace{H: 12})
		b.pushBlocks(d, base, blocks)
	}
}

func (b *Builder) pushBlocks(d *layout.Document, base layout.Style, blocks []preparedBlock) {
	for _, block := range blocks {
		switch block.kind {
		case doc.BlockParagraph:
			p := layout.NewParagraph(base, block.para.Alignment())
			p.AppendSpans(block.para.Spans())
			d.Push(p)
			d.Push(layout.VSpace{H: 2})
		case doc.BlockImage:
			d.Push(layout.NewImage(block.img, block.image.Alignment(), layout.Mm(block.image.WidthMm())))
			if caption, ok := block.image.Caption(); ok {
				capStyle := base.WithSizePt(base.SizePt() - 2).WithItalic(true)
				p := layout.NewParagraph(capStyle, doc.AlignCenter)
				p.AppendSpans(caption.Spans())
				d.Push(p)
			}
			d.Push(layout.VSpace{H: 4})
		case doc.BlockPageBreak:
			d.Push(layout.NewPageBreak())
		}
	}
}
