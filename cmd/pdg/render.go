package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pdg/bookmarks"
	"pdg/config"
	"pdg/doc"
	"pdg/docfile"
	"pdg/fonts"
	"pdg/layout"
	"pdg/misc"
	"pdg/render"
	"pdg/state"
)

func runRender(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	log := env.Log

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("no document description has been specified")
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	src := cmd.Args().Get(0)
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		dst = strings.TrimSuffix(src, filepath.Ext(src)) + ".pdf"
	}
	if !cmd.Bool("overwrite") {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("destination file '%s' already exists (use --overwrite)", dst)
		}
	}

	desc, err := docfile.Load(src)
	if err != nil {
		return err
	}
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("source/%s", filepath.Base(src)), src)
		env.Rpt.StoreData("description.txt", []byte(desc.DebugDump()))
	}

	log.Info("Rendering document",
		zap.String("source", src),
		zap.String("destination", dst),
		zap.String("title", desc.Title),
		zap.Int("sections", len(desc.Sections)))

	b, withBookmarks, err := configureBuilder(desc, env.Cfg.Document, log)
	if err != nil {
		return err
	}
	if env.Rpt != nil {
		b.WithDebugSink(func(name string, data []byte) { env.Rpt.StoreData(name, data) })
	}

	rendered, err := b.Render(ctx)
	if err != nil {
		return fmt.Errorf("unable to render document: %w", err)
	}

	data := rendered.Bytes
	if withBookmarks && len(desc.Sections) > 0 {
		data, err = bookmarks.Apply(data, desc.Sections, rendered.SectionPages)
		if err != nil {
			return fmt.Errorf("unable to apply bookmarks: %w", err)
		}
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("unable to write destination file '%s': %w", dst, err)
	}
	log.Info("Document ready", zap.String("file", dst), zap.Int("bytes", len(data)))
	return nil
}

// configureBuilder merges configuration defaults with per-document render
// options from the description. Description options always win.
func configureBuilder(desc *docfile.Description, cfg config.DocumentConfig, log *zap.Logger) (*render.Builder, bool, error) {

	paper := cfg.PaperSize()
	if len(desc.Options.Paper) > 0 {
		var ok bool
		if paper, ok = paperByName(desc.Options.Paper); !ok {
			return nil, false, fmt.Errorf("unknown paper size '%s' (supported: a4, a5, letter)", desc.Options.Paper)
		}
	}
	margins := cfg.MarginsMm
	if desc.Options.MarginsMm != nil {
		margins = *desc.Options.MarginsMm
	}
	toc := cfg.TOC.Enable
	if desc.Options.TOC != nil {
		toc = *desc.Options.TOC
	}
	tocTitle := cfg.TOC.Title
	if len(desc.Options.TOCTitle) > 0 {
		tocTitle = desc.Options.TOCTitle
	}
	withBookmarks := cfg.Bookmarks
	if desc.Options.Bookmarks != nil {
		withBookmarks = *desc.Options.Bookmarks
	}

	b := render.NewBuilder().
		WithPaperSize(paper).
		WithMargins(layout.UniformMargins(layout.Mm(margins))).
		WithBaseFontSize(cfg.BaseFontSize).
		WithLogger(log).
		WithMetadata(layout.Metadata{
			Title:   desc.Title,
			Author:  desc.Author,
			Creator: misc.GetAppName() + " " + misc.GetVersion(),
		}).
		IncludePrintedTOC(toc).
		WithTOCTitle(tocTitle).
		TrackSectionPages(withBookmarks)

	if desc.Cover != nil {
		b.WithCover(*desc.Cover)
	}
	for _, s := range desc.Sections {
		b.AddSection(s)
	}

	if len(cfg.Fonts.Family) > 0 {
		b.WithFontFamily(cfg.Fonts.Family).WithFontsDir(cfg.Fonts.Dir)
	}
	if len(cfg.Fonts.HyphenationPatterns) > 0 {
		b.WithHyphenationPatterns(cfg.Fonts.HyphenationPatterns)
	}
	if cfg.Footer.Enable {
		b.WithFooter(cfg.Footer.HeightMm, footerFactory(cfg.Footer))
	}
	return b, withBookmarks, nil
}

func paperByName(name string) (layout.Size, bool) {
	switch name {
	case "a4":
		return layout.A4, true
	case "a5":
		return layout.A5, true
	case "letter":
		return layout.Letter, true
	}
	return layout.Size{}, false
}

// footerFactory builds per-page footers from configuration. Footers always
// use the built-in core family so that a missing custom font can never break
// page decoration.
func footerFactory(cfg config.FooterConfig) func(page int) layout.Element {
	style := layout.DefaultStyle(fonts.CoreFamily()).WithSizePt(9)
	return func(page int) layout.Element {
		text := cfg.Text
		if cfg.ShowPageNumber {
			if len(text) > 0 {
				text += "  "
			}
			text += strconv.Itoa(page)
		}
		return layout.NewParagraph(style, doc.AlignCenter).Append(text, style)
	}
}
