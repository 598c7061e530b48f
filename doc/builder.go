package doc

import "github.com/gosimple/slug"

// SectionBuilder is a convenience construction helper for sections. When
// configured to start on a new page it inserts a PageBreak as the section's
// first block unless the first block already is one, so consecutive breaks
// are never produced.
type SectionBuilder struct {
	title          string
	identifier     string
	blocks         []Block
	startOnNewPage bool
	autoIdentifier bool
}

// NewSectionBuilder creates a builder for a section with the given title.
func NewSectionBuilder(title string) *SectionBuilder {
	return &SectionBuilder{title: title}
}

// StartOnNewPage marks the section to start on a new page.
func (b *SectionBuilder) StartOnNewPage(start bool) *SectionBuilder {
	b.startOnNewPage = start
	return b
}

// Identifier sets the stable identifier used for bookmark naming.
func (b *SectionBuilder) Identifier(id string) *SectionBuilder {
	b.identifier = id
	return b
}

// AutoIdentifier derives the identifier from the section title when no
// explicit identifier was provided.
func (b *SectionBuilder) AutoIdentifier(auto bool) *SectionBuilder {
	b.autoIdentifier = auto
	return b
}

// PushBlock appends a block to the section.
func (b *SectionBuilder) PushBlock(block Block) *SectionBuilder {
	b.blocks = append(b.blocks, block)
	return b
}

// ExtendBlocks appends multiple blocks to the section.
func (b *SectionBuilder) ExtendBlocks(blocks ...Block) *SectionBuilder {
	b.blocks = append(b.blocks, blocks...)
	return b
}

// Build assembles the final section, injecting a leading page break when
// requested.
func (b *SectionBuilder) Build() Section {
	blocks := b.blocks
	if b.startOnNewPage {
		if len(blocks) == 0 || blocks[0].Kind() != BlockPageBreak {
			blocks = append([]Block{PageBreakBlock()}, blocks...)
		}
	}

	id := b.identifier
	if len(id) == 0 && b.autoIdentifier {
		id = slug.Make(b.title)
	}

	s := NewSection(b.title).WithIdentifier(id)
	s.blocks = append([]Block(nil), blocks...)
	return s
}
