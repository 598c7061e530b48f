// Package doc defines the logical content model of a document: styled text
// spans, paragraphs, images, page breaks, sections and the cover page. The
// model carries no rendering behavior - it is assembled by callers (or from a
// description file) and consumed by the render pipeline.
package doc

import "fmt"

// Color is an opaque RGB color attached to text spans.
type Color struct {
	R, G, B uint8
}

func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Span is an immutable text fragment carrying one fixed style. Two spans are
// equal when all their fields are equal.
type Span struct {
	text      string
	bold      bool
	italic    bool
	underline bool
	color     Color
	hasColor  bool
}

// NewSpan creates a span with the provided text and no styles applied.
func NewSpan(text string) Span {
	return Span{text: text}
}

// Text returns the raw text contained in the span.
func (s Span) Text() string { return s.text }

// IsBold reports whether the span should be rendered in bold.
func (s Span) IsBold() bool { return s.bold }

// IsItalic reports whether the span should be rendered in italic.
func (s Span) IsItalic() bool { return s.italic }

// IsUnderlined reports whether the span is marked as underlined. Underline is
// not expressible through the markup syntax and is set directly by callers.
func (s Span) IsUnderlined() bool { return s.underline }

// Color returns the configured span color and whether one was set.
func (s Span) Color() (Color, bool) { return s.color, s.hasColor }

// WithBold sets the bold flag and returns the updated span.
func (s Span) WithBold(bold bool) Span {
	s.bold = bold
	return s
}

// WithItalic sets the italic flag and returns the updated span.
func (s Span) WithItalic(italic bool) Span {
	s.italic = italic
	return s
}

// WithUnderline sets the underline flag and returns the updated span.
func (s Span) WithUnderline(underline bool) Span {
	s.underline = underline
	return s
}

// WithColor assigns a color and returns the updated span.
func (s Span) WithColor(c Color) Span {
	s.color, s.hasColor = c, true
	return s
}

// WithoutColor removes any assigned color and returns the updated span.
func (s Span) WithoutColor() Span {
	s.color, s.hasColor = Color{}, false
	return s
}

// Bold is shorthand for WithBold(true).
func (s Span) Bold() Span { return s.WithBold(true) }

// Italic is shorthand for WithItalic(true).
func (s Span) Italic() Span { return s.WithItalic(true) }

// Underline is shorthand for WithUnderline(true).
func (s Span) Underline() Span { return s.WithUnderline(true) }

// Colored is shorthand for WithColor.
func (s Span) Colored(c Color) Span { return s.WithColor(c) }

// Alignment selects horizontal placement of paragraphs and images.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustified
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustified:
		return "justified"
	}
	return fmt.Sprintf("alignment(%d)", int(a))
}

// RichParagraph is an ordered sequence of spans plus a horizontal alignment.
type RichParagraph struct {
	spans     []Span
	alignment Alignment
}

// NewParagraph creates a left-aligned paragraph from the provided spans.
func NewParagraph(spans ...Span) RichParagraph {
	return RichParagraph{spans: append([]Span(nil), spans...)}
}

// Spans returns the spans that make up the paragraph.
func (p RichParagraph) Spans() []Span { return p.spans }

// Alignment returns the configured alignment.
func (p RichParagraph) Alignment() Alignment { return p.alignment }

// WithAlignment sets the alignment and returns the updated paragraph.
func (p RichParagraph) WithAlignment(a Alignment) RichParagraph {
	p.alignment = a
	return p
}

// ImageSourceKind discriminates the two supported image sources.
type ImageSourceKind int

const (
	// ImageSourceBytes means the image is supplied as raw encoded bytes.
	ImageSourceBytes ImageSourceKind = iota
	// ImageSourcePath means the image is read from a file path at render time.
	ImageSourcePath
)

// ImageSource is either raw bytes or a file path reference, never both.
// Construct through BytesSource or PathSource.
type ImageSource struct {
	kind  ImageSourceKind
	bytes []byte
	path  string
}

// BytesSource creates an in-memory image source.
func BytesSource(data []byte) ImageSource {
	return ImageSource{kind: ImageSourceBytes, bytes: append([]byte(nil), data...)}
}

// PathSource creates an image source referencing a file on disk.
func PathSource(path string) ImageSource {
	return ImageSource{kind: ImageSourcePath, path: path}
}

// Kind returns the source discriminator.
func (s ImageSource) Kind() ImageSourceKind { return s.kind }

// Bytes returns raw image data for ImageSourceBytes sources.
func (s ImageSource) Bytes() []byte { return s.bytes }

// Path returns the file path for ImageSourcePath sources.
func (s ImageSource) Path() string { return s.path }

// Describe returns a short human readable description of the source used in
// error messages.
func (s ImageSource) Describe() string {
	if s.kind == ImageSourcePath {
		return fmt.Sprintf("image file %q", s.path)
	}
	return fmt.Sprintf("image bytes (%d bytes)", len(s.bytes))
}

// ImageBlock is an image with an optional caption, an alignment and an
// optional target width in millimetres. When the width is set the image is
// rescaled uniformly, preserving the aspect ratio; zero means natural size.
type ImageBlock struct {
	source     ImageSource
	caption    *RichParagraph
	alignment  Alignment
	widthMm    float64
	hasCaption bool
}

// NewImage creates a left-aligned image block rendered at natural size.
func NewImage(source ImageSource) ImageBlock {
	return ImageBlock{source: source}
}

// Source returns the image source.
func (b ImageBlock) Source() ImageSource { return b.source }

// Caption returns the caption paragraph and whether one was set.
func (b ImageBlock) Caption() (RichParagraph, bool) {
	if !b.hasCaption {
		return RichParagraph{}, false
	}
	return *b.caption, true
}

// Alignment returns the configured alignment.
func (b ImageBlock) Alignment() Alignment { return b.alignment }

// WidthMm returns the requested rendered width in millimetres, 0 when the
// natural size should be used.
func (b ImageBlock) WidthMm() float64 { return b.widthMm }

// WithCaption sets the caption and returns the updated block.
func (b ImageBlock) WithCaption(caption RichParagraph) ImageBlock {
	b.caption, b.hasCaption = &caption, true
	return b
}

// WithAlignment sets the alignment and returns the updated block.
func (b ImageBlock) WithAlignment(a Alignment) ImageBlock {
	b.alignment = a
	return b
}

// WithWidthMm constrains the rendered width and returns the updated block.
func (b ImageBlock) WithWidthMm(widthMm float64) ImageBlock {
	b.widthMm = widthMm
	return b
}

// BlockKind discriminates content block variants.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockImage
	BlockPageBreak
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockImage:
		return "image"
	case BlockPageBreak:
		return "page break"
	}
	return fmt.Sprintf("block(%d)", int(k))
}

// Block is a tagged variant over paragraph, image and page break content.
// PageBreak carries no data - it is a layout directive, not content.
type Block struct {
	kind  BlockKind
	para  RichParagraph
	image ImageBlock
}

// ParagraphBlock wraps a paragraph into a block.
func ParagraphBlock(p RichParagraph) Block {
	return Block{kind: BlockParagraph, para: p}
}

// SpansBlock builds a paragraph block directly from spans.
func SpansBlock(spans ...Span) Block {
	return ParagraphBlock(NewParagraph(spans...))
}

// ImageBlockOf wraps an image into a block.
func ImageBlockOf(img ImageBlock) Block {
	return Block{kind: BlockImage, image: img}
}

// PageBreakBlock yields an explicit page break directive.
func PageBreakBlock() Block {
	return Block{kind: BlockPageBreak}
}

// Kind returns the block discriminator.
func (b Block) Kind() BlockKind { return b.kind }

// Paragraph returns the paragraph payload of a BlockParagraph block.
func (b Block) Paragraph() RichParagraph { return b.para }

// Image returns the image payload of a BlockImage block.
func (b Block) Image() ImageBlock { return b.image }

// Cover describes the cover page, rendered before all sections and before
// any table of contents.
type Cover struct {
	title      string
	subtitle   string
	identifier string
	blocks     []Block
}

// NewCover creates a cover with the given title.
func NewCover(title string) Cover {
	return Cover{title: title}
}

// Title returns the title shown on the cover page.
func (c Cover) Title() string { return c.title }

// Subtitle returns the subtitle, empty when not set.
func (c Cover) Subtitle() string { return c.subtitle }

// Identifier returns the cover identifier, empty when not set.
func (c Cover) Identifier() string { return c.identifier }

// Blocks returns the content blocks rendered on the cover page.
func (c Cover) Blocks() []Block { return c.blocks }

// WithSubtitle sets the subtitle and returns the updated cover.
func (c Cover) WithSubtitle(subtitle string) Cover {
	c.subtitle = subtitle
	return c
}

// WithIdentifier sets the identifier and returns the updated cover.
func (c Cover) WithIdentifier(id string) Cover {
	c.identifier = id
	return c
}

// WithBlock appends a block and returns the updated cover.
func (c Cover) WithBlock(b Block) Cover {
	c.blocks = append(append([]Block(nil), c.blocks...), b)
	return c
}

// WithBlocks appends multiple blocks and returns the updated cover.
func (c Cover) WithBlocks(blocks ...Block) Cover {
	c.blocks = append(append([]Block(nil), c.blocks...), blocks...)
	return c
}

// Section is a titled, ordered sequence of blocks. Section order is document
// order and determines both pagination and table of contents ordering.
type Section struct {
	title      string
	identifier string
	blocks     []Block
}

// NewSection creates a section with the provided title.
func NewSection(title string) Section {
	return Section{title: title}
}

// Title returns the section title.
func (s Section) Title() string { return s.title }

// Identifier returns the stable identifier used for bookmark naming, empty
// when not set.
func (s Section) Identifier() string { return s.identifier }

// Blocks returns the blocks contained in the section.
func (s Section) Blocks() []Block { return s.blocks }

// WithIdentifier sets the identifier and returns the updated section.
func (s Section) WithIdentifier(id string) Section {
	s.identifier = id
	return s
}

// WithBlock appends a block and returns the updated section.
func (s Section) WithBlock(b Block) Section {
	s.blocks = append(append([]Block(nil), s.blocks...), b)
	return s
}

// WithBlocks appends multiple blocks and returns the updated section.
func (s Section) WithBlocks(blocks ...Block) Section {
	s.blocks = append(append([]Block(nil), s.blocks...), blocks...)
	return s
}
