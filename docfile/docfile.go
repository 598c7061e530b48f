// Package docfile loads a YAML document description and turns it into the
// content model the render pipeline consumes. The description format is the
// command line front end of the program: metadata, an optional cover,
// sections with markup text, images and page breaks, plus a handful of
// render options that override configuration defaults.
package docfile

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pdg/doc"
	"pdg/markup"
)

// Description is a fully parsed document description. Markup strings are
// already expanded into spans, images stay as path references to be decoded
// at render time.
type Description struct {
	Title  string
	Author string

	Cover    *doc.Cover
	Sections []doc.Section

	Options Options
}

// Options are per-document render settings. Pointer fields distinguish
// "not specified" from an explicit value, so configuration defaults apply
// only where the description stays silent.
type Options struct {
	TOC       *bool
	TOCTitle  string
	Bookmarks *bool
	Paper     string
	MarginsMm *float64
}

type documentYAML struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`

	Cover    *coverYAML    `yaml:"cover"`
	Sections []sectionYAML `yaml:"sections"`

	Render renderYAML `yaml:"render"`
}

type coverYAML struct {
	Title    string      `yaml:"title"`
	Subtitle string      `yaml:"subtitle"`
	Blocks   []blockYAML `yaml:"blocks"`
}

type sectionYAML struct {
	Title          string      `yaml:"title"`
	ID             string      `yaml:"id"`
	StartOnNewPage bool        `yaml:"start_on_new_page"`
	Blocks         []blockYAML `yaml:"blocks"`
}

// blockYAML is a tagged union in disguise: exactly one of text, image or
// page_break selects the block kind, the remaining fields qualify it.
type blockYAML struct {
	Text      string  `yaml:"text"`
	Image     string  `yaml:"image"`
	Caption   string  `yaml:"caption"`
	WidthMm   float64 `yaml:"width_mm"`
	Align     string  `yaml:"align"`
	PageBreak bool    `yaml:"page_break"`
}

type renderYAML struct {
	TOC       *bool    `yaml:"toc"`
	TOCTitle  string   `yaml:"toc_title"`
	Bookmarks *bool    `yaml:"bookmarks"`
	Paper     string   `yaml:"paper"`
	MarginsMm *float64 `yaml:"margins_mm"`
}

// Load reads and parses a document description file.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read document description: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("document description '%s': %w", path, err)
	}
	return d, nil
}

// Parse decodes a document description from YAML. Unknown fields are
// rejected, markup errors are reported with the section, block and byte
// offset they originate from.
func Parse(data []byte) (*Description, error) {

	var raw documentYAML
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unable to parse YAML: %w", err)
	}

	if len(raw.Title) == 0 {
		return nil, fmt.Errorf("document title is required")
	}

	d := &Description{
		Title:  raw.Title,
		Author: raw.Author,
		Options: Options{
			TOC:       raw.Render.TOC,
			TOCTitle:  raw.Render.TOCTitle,
			Bookmarks: raw.Render.Bookmarks,
			Paper:     raw.Render.Paper,
			MarginsMm: raw.Render.MarginsMm,
		},
	}

	if raw.Cover != nil {
		cover, err := buildCover(raw.Cover)
		if err != nil {
			return nil, err
		}
		d.Cover = cover
	}

	for i, s := range raw.Sections {
		if len(s.Title) == 0 {
			return nil, fmt.Errorf("section %d: title is required", i)
		}
		sb := doc.NewSectionBuilder(s.Title).
			Identifier(s.ID).
			AutoIdentifier(len(s.ID) == 0).
			StartOnNewPage(s.StartOnNewPage)
		for j, b := range s.Blocks {
			block, err := buildBlock(b)
			if err != nil {
				return nil, fmt.Errorf("section %d (%s), block %d: %w", i, s.Title, j, err)
			}
			sb.PushBlock(block)
		}
		d.Sections = append(d.Sections, sb.Build())
	}
	return d, nil
}

func buildCover(c *coverYAML) (*doc.Cover, error) {
	if len(c.Title) == 0 {
		return nil, fmt.Errorf("cover: title is required")
	}
	cover := doc.NewCover(c.Title).WithSubtitle(c.Subtitle)
	for j, b := range c.Blocks {
		block, err := buildBlock(b)
		if err != nil {
			return nil, fmt.Errorf("cover, block %d: %w", j, err)
		}
		cover = cover.WithBlock(block)
	}
	return &cover, nil
}

func buildBlock(b blockYAML) (doc.Block, error) {

	variants := 0
	for _, set := range []bool{len(b.Text) > 0, len(b.Image) > 0, b.PageBreak} {
		if set {
			variants++
		}
	}
	if variants != 1 {
		return doc.Block{}, fmt.Errorf("exactly one of text, image or page_break must be set")
	}

	switch {
	case b.PageBreak:
		return doc.PageBreakBlock(), nil

	case len(b.Image) > 0:
		align, err := parseAlignment(b.Align)
		if err != nil {
			return doc.Block{}, err
		}
		img := doc.NewImage(doc.PathSource(b.Image)).WithWidthMm(b.WidthMm).WithAlignment(align)
		if len(b.Caption) > 0 {
			spans, err := parseMarkup(b.Caption)
			if err != nil {
				return doc.Block{}, fmt.Errorf("caption: %w", err)
			}
			img = img.WithCaption(doc.NewParagraph(spans...))
		}
		return doc.ImageBlockOf(img), nil

	default:
		spans, err := parseMarkup(b.Text)
		if err != nil {
			return doc.Block{}, err
		}
		align, err := parseAlignment(b.Align)
		if err != nil {
			return doc.Block{}, err
		}
		return doc.ParagraphBlock(doc.NewParagraph(spans...).WithAlignment(align)), nil
	}
}

func parseMarkup(text string) ([]doc.Span, error) {
	spans, err := markup.Parse(text)
	if err != nil {
		if pe, ok := err.(*markup.ParseError); ok {
			return nil, fmt.Errorf("markup error at byte %d: %s", pe.Index, pe.Message)
		}
		return nil, err
	}
	return spans, nil
}

func parseAlignment(name string) (doc.Alignment, error) {
	switch name {
	case "", "left":
		return doc.AlignLeft, nil
	case "center":
		return doc.AlignCenter, nil
	case "right":
		return doc.AlignRight, nil
	case "justified", "justify":
		return doc.AlignJustified, nil
	}
	return doc.AlignLeft, fmt.Errorf("unknown alignment '%s' (supported: left, center, right, justified)", name)
}
