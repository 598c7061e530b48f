package layout

import (
	"reflect"
	"strings"
	"testing"
)

const demoPatterns = `% demo pattern set
hy3ph
he2n
hena4
hen5at
ina
n2at
itio
2io
o2n
`

func demoHyphenator(t *testing.T) *Hyphenator {
	t.Helper()
	h, err := ReadHyphenator(strings.NewReader(demoPatterns))
	if err != nil {
		t.Fatalf("loading patterns: %v", err)
	}
	return h
}

func TestHyphenateClassicExample(t *testing.T) {
	h := demoHyphenator(t)
	got := h.Hyphenate("hyphenation", "-")
	if got != "hy-phen-ation" {
		t.Fatalf("Hyphenate = %q, want hy-phen-ation", got)
	}
}

func TestBreakPositions(t *testing.T) {
	h := demoHyphenator(t)
	got := h.BreakPositions("hyphenation")
	if !reflect.DeepEqual(got, []int{2, 6}) {
		t.Fatalf("BreakPositions = %v, want [2 6]", got)
	}

	t.Run("short words are never broken", func(t *testing.T) {
		if got := h.BreakPositions("iona"); got != nil {
			t.Fatalf("expected no breaks for a short word, got %v", got)
		}
	})

	t.Run("nil hyphenator is inert", func(t *testing.T) {
		var none *Hyphenator
		if got := none.BreakPositions("hyphenation"); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}

func TestReadHyphenatorRejectsEmptyInput(t *testing.T) {
	if _, err := ReadHyphenator(strings.NewReader("% only a comment\n\n")); err == nil {
		t.Fatal("expected an error for a pattern stream without patterns")
	}
}

func TestLoadHyphenatorMissingFile(t *testing.T) {
	_, err := LoadHyphenator("/definitely/not/there.pat")
	if err == nil {
		t.Fatal("expected an error for a missing pattern file")
	}
	if !strings.Contains(err.Error(), "/definitely/not/there.pat") {
		t.Fatalf("error should carry the path: %v", err)
	}
}
