// Package render drives the document pipeline: content model in, finished
// PDF bytes out. When a printed table of contents is requested the pipeline
// renders twice - a discovery pass that records which page every section
// lands on, and a final pass that prints those numbers into the TOC.
package render

import (
	"time"

	"go.uber.org/zap"

	"pdg/doc"
	"pdg/layout"
)

// Builder assembles the input for one render. The zero value is not usable;
// start from NewBuilder.
type Builder struct {
	cover    *doc.Cover
	sections []doc.Section

	includeTOC bool
	tocTitle   string
	trackPages bool

	paper   layout.Size
	margins layout.Margins

	header       func(page int) layout.Element
	headerGap    layout.Mm
	footer       func(page int) layout.Element
	footerHeight layout.Mm

	fontsDir    string
	fontFamily  string
	hyphenPath  string
	meta        layout.Metadata
	clock       func() time.Time
	idSource    func() [16]byte
	log         *zap.Logger
	debugSink   func(name string, data []byte)
	baseSizePt  float64
	lineSpacing float64
}

// NewBuilder returns a builder producing A4 pages with 20mm margins, the
// built-in font family and 11pt body text.
func NewBuilder() *Builder {
	return &Builder{
		tocTitle:    "Table of Contents",
		paper:       layout.A4,
		margins:     layout.UniformMargins(20),
		baseSizePt:  11,
		lineSpacing: 1.25,
	}
}

// WithCover sets the cover rendered before all sections.
func (b *Builder) WithCover(c doc.Cover) *Builder {
	b.cover = &c
	return b
}

// AddSection appends a section in reading order.
func (b *Builder) AddSection(s doc.Section) *Builder {
	b.sections = append(b.sections, s)
	return b
}

// IncludePrintedTOC enables the printed table of contents and with it the
// discovery pass.
func (b *Builder) IncludePrintedTOC(include bool) *Builder {
	b.includeTOC = include
	return b
}

// WithTOCTitle overrides the heading above the table of contents.
func (b *Builder) WithTOCTitle(title string) *Builder {
	b.tocTitle = title
	return b
}

// TrackSectionPages makes Render report the final page of every section.
func (b *Builder) TrackSectionPages(track bool) *Builder {
	b.trackPages = track
	return b
}

// WithHeader installs a per-page header factory.
func (b *Builder) WithHeader(fn func(page int) layout.Element) *Builder {
	b.header = fn
	b.headerGap = 4
	return b
}

// WithFooter reserves heightMm at the bottom of every page for the footer
// produced by fn. A footer that does not fit the reserved band aborts the
// render.
func (b *Builder) WithFooter(heightMm float64, fn func(page int) layout.Element) *Builder {
	b.footer = fn
	b.footerHeight = layout.Mm(heightMm)
	return b
}

// WithPaperSize selects the page dimensions.
func (b *Builder) WithPaperSize(paper layout.Size) *Builder {
	b.paper = paper
	return b
}

// WithMargins sets the page margins.
func (b *Builder) WithMargins(m layout.Margins) *Builder {
	b.margins = m
	return b
}

// WithFontsDir sets the directory searched first for TrueType families.
func (b *Builder) WithFontsDir(dir string) *Builder {
	b.fontsDir = dir
	return b
}

// WithFontFamily selects a TrueType family by base name. Empty keeps the
// built-in core family.
func (b *Builder) WithFontFamily(name string) *Builder {
	b.fontFamily = name
	return b
}

// WithHyphenationPatterns enables hyphenation from a TeX pattern file. An
// unreadable file fails the render before any layout happens.
func (b *Builder) WithHyphenationPatterns(path string) *Builder {
	b.hyphenPath = path
	return b
}

// WithMetadata sets the document metadata written to Info and XMP.
func (b *Builder) WithMetadata(meta layout.Metadata) *Builder {
	b.meta = meta
	return b
}

// WithClock injects the timestamp source, fixed in tests for reproducible
// bytes.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithIDSource injects the file identifier source.
func (b *Builder) WithIDSource(fn func() [16]byte) *Builder {
	b.idSource = fn
	return b
}

// WithLogger attaches a logger; render stages log under named subloggers.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// WithDebugSink receives intermediate artifacts, such as the discovery pass
// bytes, for debug reporting.
func (b *Builder) WithDebugSink(fn func(name string, data []byte)) *Builder {
	b.debugSink = fn
	return b
}

// WithBaseFontSize sets the body text size in points.
func (b *Builder) WithBaseFontSize(sizePt float64) *Builder {
	b.baseSizePt = sizePt
	return b
}

// Rendered is the outcome of a render call.
type Rendered struct {
	// Bytes is the finished PDF.
	Bytes []byte
	// SectionPages maps input section order to the 1-based page the section
	// starts on in the final artifact, nil where never recorded. Populated
	// only when TrackSectionPages was requested.
	SectionPages []*int
}
