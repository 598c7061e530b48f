package doc

import "testing"

func TestSectionBuilderPageBreak(t *testing.T) {
	t.Run("inserts leading page break", func(t *testing.T) {
		s := NewSectionBuilder("Intro").
			StartOnNewPage(true).
			PushBlock(SpansBlock(NewSpan("hello"))).
			Build()
		if len(s.Blocks()) != 2 {
			t.Fatalf("expected 2 blocks, got %d", len(s.Blocks()))
		}
		if s.Blocks()[0].Kind() != BlockPageBreak {
			t.Fatalf("first block should be a page break, got %v", s.Blocks()[0].Kind())
		}
	})

	t.Run("does not duplicate page break", func(t *testing.T) {
		s := NewSectionBuilder("Intro").
			StartOnNewPage(true).
			PushBlock(PageBreakBlock()).
			Build()
		if len(s.Blocks()) != 1 {
			t.Fatalf("expected single block, got %d", len(s.Blocks()))
		}
		if s.Blocks()[0].Kind() != BlockPageBreak {
			t.Fatalf("first block should be a page break, got %v", s.Blocks()[0].Kind())
		}
	})

	t.Run("empty section gets single break", func(t *testing.T) {
		s := NewSectionBuilder("Empty").StartOnNewPage(true).Build()
		if len(s.Blocks()) != 1 || s.Blocks()[0].Kind() != BlockPageBreak {
			t.Fatalf("expected exactly one page break block, got %+v", s.Blocks())
		}
	})
}

func TestSectionBuilderAutoIdentifier(t *testing.T) {
	s := NewSectionBuilder("Executive Highlights").AutoIdentifier(true).Build()
	if s.Identifier() != "executive-highlights" {
		t.Fatalf("unexpected derived identifier %q", s.Identifier())
	}

	s = NewSectionBuilder("Executive Highlights").Identifier("custom").AutoIdentifier(true).Build()
	if s.Identifier() != "custom" {
		t.Fatalf("explicit identifier should win, got %q", s.Identifier())
	}
}

func TestSpanWithers(t *testing.T) {
	base := NewSpan("text")
	styled := base.Bold().Italic().Underline().Colored(Color{R: 10, G: 20, B: 30})

	if base.IsBold() || base.IsItalic() || base.IsUnderlined() {
		t.Fatal("withers must not mutate the original span")
	}
	if !styled.IsBold() || !styled.IsItalic() || !styled.IsUnderlined() {
		t.Fatal("styled span lost flags")
	}
	if c, ok := styled.Color(); !ok || c != (Color{R: 10, G: 20, B: 30}) {
		t.Fatalf("unexpected color %v %v", c, ok)
	}

	if styled.WithoutColor() != base.Bold().Italic().Underline() {
		t.Fatal("span equality should be structural")
	}
}

func TestCoverAndSectionOrdering(t *testing.T) {
	blocks := []Block{
		SpansBlock(NewSpan("one")),
		PageBreakBlock(),
		SpansBlock(NewSpan("two")),
	}
	s := NewSection("S").WithBlocks(blocks...)
	for i, b := range s.Blocks() {
		if b.Kind() != blocks[i].Kind() {
			t.Fatalf("block %d reordered", i)
		}
	}

	c := NewCover("T").WithSubtitle("sub").WithBlock(blocks[0]).WithBlock(blocks[1])
	if len(c.Blocks()) != 2 {
		t.Fatalf("expected 2 cover blocks, got %d", len(c.Blocks()))
	}
	if c.Subtitle() != "sub" {
		t.Fatalf("unexpected subtitle %q", c.Subtitle())
	}
}
