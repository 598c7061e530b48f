package markup

import (
	"errors"
	"strings"
	"testing"

	"pdg/doc"
)

func TestParsePlainText(t *testing.T) {
	spans, err := Parse("Hello world")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	s := spans[0]
	if s.Text() != "Hello world" || s.IsBold() || s.IsItalic() || s.IsUnderlined() {
		t.Fatalf("unexpected span %+v", s)
	}
	if _, ok := s.Color(); ok {
		t.Fatal("plain text must not carry a color")
	}
}

func TestParseNestedStyles(t *testing.T) {
	spans, err := Parse("This is **very *cool***!")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(spans) != 4 {
		t.Fatalf("expected 4 spans, got %d: %+v", len(spans), spans)
	}

	if spans[0].Text() != "This is " || spans[0].IsBold() {
		t.Fatalf("span 0 mismatch: %+v", spans[0])
	}
	if spans[1].Text() != "very " || !spans[1].IsBold() || spans[1].IsItalic() {
		t.Fatalf("span 1 mismatch: %+v", spans[1])
	}
	if spans[2].Text() != "cool" || !spans[2].IsBold() || !spans[2].IsItalic() {
		t.Fatalf("span 2 mismatch: %+v", spans[2])
	}
	if spans[3].Text() != "!" || spans[3].IsBold() || spans[3].IsItalic() {
		t.Fatalf("span 3 mismatch: %+v", spans[3])
	}
}

func TestParseColorDirective(t *testing.T) {
	spans, err := Parse("[color=#ff0000]{Red} text")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	c, ok := spans[0].Color()
	if !ok || c != (doc.Color{R: 0xff}) {
		t.Fatalf("unexpected color %v %v", c, ok)
	}
	if spans[0].Text() != "Red" || spans[1].Text() != " text" {
		t.Fatalf("unexpected texts %q %q", spans[0].Text(), spans[1].Text())
	}
	if _, ok := spans[1].Color(); ok {
		t.Fatal("color must not leak out of its scope")
	}
}

func TestParseIsLosslessPartition(t *testing.T) {
	inputs := []string{
		"plain",
		"This is **very *cool***!",
		"[color=#123456]{a}b**c**",
		"*i* and **b** and [color=#abcdef]{**bi ya**} tail",
		"unicode *строка* with **多字节** runs",
		"",
	}
	for _, input := range inputs {
		spans, err := Parse(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		var sb strings.Builder
		for _, s := range spans {
			sb.WriteString(s.Text())
		}
		expected := strings.NewReplacer("**", "", "*", "").Replace(input)
		expected = stripColorDirectives(expected)
		if sb.String() != expected {
			t.Fatalf("parse %q: concatenated %q, want %q", input, sb.String(), expected)
		}
	}
}

func stripColorDirectives(s string) string {
	for {
		start := strings.Index(s, "[color=")
		if start < 0 {
			return s
		}
		open := strings.Index(s[start:], "{")
		s = s[:start] + s[start+open+1:]
		s = strings.Replace(s, "}", "", 1)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		index   int
		message string
	}{
		{"unterminated bold", "**oops", 6, "unterminated bold span"},
		{"unterminated italic", "*oops", 5, "unterminated italic span"},
		{"unterminated color", "[color=#112233]{oops", 20, "unterminated color span"},
		{"stray closing brace", "oops}", 4, "unexpected closing token `}`"},
		{"stray closing bracket", "oops]", 4, "unexpected closing token `]`"},
		{"unknown directive", "[link=x]{y}", 0, "unsupported directive"},
		{"missing hash", "[color=112233]{x}", 7, "expected `#`"},
		{"short hex", "[color=#1122]", 8, "incomplete color specification"},
		{"invalid hex digit", "[color=#12FG34]{x}", 11, "invalid RGB specification"},
		{"missing bracket", "[color=#112233{x}", 14, "expected `]`"},
		{"missing brace", "[color=#112233]x", 15, "expected `{`"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spans, err := Parse(tc.input)
			if err == nil {
				t.Fatalf("expected error, got spans %+v", spans)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Index != tc.index {
				t.Fatalf("error index %d, want %d (%v)", pe.Index, tc.index, pe)
			}
			if !strings.Contains(pe.Message, tc.message) {
				t.Fatalf("message %q does not contain %q", pe.Message, tc.message)
			}
			if spans != nil {
				t.Fatal("failed parse must not return partial spans")
			}
		})
	}
}
