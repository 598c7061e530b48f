// Package markup parses a compact inline markup syntax into styled text
// spans:
//
//	**bold**
//	*italic*
//	[color=#RRGGBB]{colored}
//
// Scopes nest arbitrarily. A contiguous run of plain text under unchanging
// style becomes exactly one span, so the result is a partition of the input
// into maximal constant-style runs. Underline is not expressible through the
// syntax; callers set the flag on spans directly.
package markup

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"pdg/doc"
)

// ParseError reports a malformed construct together with the byte offset of
// the failing token in the original input.
type ParseError struct {
	Index   int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (at byte %d)", e.Message, e.Index)
}

func parseError(index int, format string, args ...any) *ParseError {
	return &ParseError{Index: index, Message: fmt.Sprintf(format, args...)}
}

// styleState accumulates the style of the currently open scopes.
type styleState struct {
	bold     bool
	italic   bool
	color    doc.Color
	hasColor bool
}

func (st styleState) span(text string) doc.Span {
	s := doc.NewSpan(text).WithBold(st.bold).WithItalic(st.italic)
	if st.hasColor {
		s = s.WithColor(st.color)
	}
	return s
}

type marker int

const (
	markerBold marker = iota
	markerItalic
	markerColor
)

func (m marker) closingToken() string {
	switch m {
	case markerBold:
		return "**"
	case markerItalic:
		return "*"
	default:
		return "}"
	}
}

func (m marker) description() string {
	switch m {
	case markerBold:
		return "bold span"
	case markerItalic:
		return "italic span"
	default:
		return "color span"
	}
}

// Parse converts the input into a sequence of styled spans. On malformed
// input it returns a *ParseError and no spans - parsing never produces
// partial results.
func Parse(input string) ([]doc.Span, error) {
	p := &parser{input: input}
	spans, err := p.parse(styleState{}, nil)
	if err != nil {
		return nil, err
	}
	return spans, nil
}

type parser struct {
	input string
	index int
}

func (p *parser) rest() string {
	return p.input[p.index:]
}

func (p *parser) parse(state styleState, closing *marker) ([]doc.Span, error) {
	var spans []doc.Span
	var buffer strings.Builder

	flush := func() {
		if buffer.Len() == 0 {
			return
		}
		spans = append(spans, state.span(buffer.String()))
		buffer.Reset()
	}

	for p.index < len(p.input) {
		if closing != nil && strings.HasPrefix(p.rest(), closing.closingToken()) {
			flush()
			p.index += len(closing.closingToken())
			return spans, nil
		}

		switch {
		case strings.HasPrefix(p.rest(), "**"):
			flush()
			p.index += 2
			nested := state
			nested.bold = true
			m := markerBold
			inner, err := p.parse(nested, &m)
			if err != nil {
				return nil, err
			}
			spans = append(spans, inner...)

		case strings.HasPrefix(p.rest(), "*"):
			flush()
			p.index++
			nested := state
			nested.italic = true
			m := markerItalic
			inner, err := p.parse(nested, &m)
			if err != nil {
				return nil, err
			}
			spans = append(spans, inner...)

		case strings.HasPrefix(p.rest(), "[color="):
			color, err := p.parseColorDirective()
			if err != nil {
				return nil, err
			}
			flush()
			nested := state
			nested.color, nested.hasColor = color, true
			m := markerColor
			inner, err := p.parse(nested, &m)
			if err != nil {
				return nil, err
			}
			spans = append(spans, inner...)

		case strings.HasPrefix(p.rest(), "}"):
			return nil, parseError(p.index, "unexpected closing token `}` without matching opening `[color=...]`")

		case strings.HasPrefix(p.rest(), "]"):
			return nil, parseError(p.index, "unexpected closing token `]`")

		case strings.HasPrefix(p.rest(), "["):
			return nil, parseError(p.index, "unsupported directive; expected `[color=#RRGGBB]{...}`")

		default:
			r, size := utf8.DecodeRuneInString(p.rest())
			buffer.WriteRune(r)
			p.index += size
		}
	}

	if closing != nil {
		return nil, parseError(p.index, "unterminated %s", closing.description())
	}
	flush()
	return spans, nil
}

// parseColorDirective consumes `[color=#RRGGBB]{` and leaves the parser
// positioned at the first byte of the colored text.
func (p *parser) parseColorDirective() (doc.Color, error) {
	const prefix = "[color="
	hashIndex := p.index + len(prefix)

	if !strings.HasPrefix(p.input[hashIndex:], "#") {
		return doc.Color{}, parseError(hashIndex, "expected `#` followed by a hexadecimal RGB value")
	}

	hexStart := hashIndex + 1
	hexEnd := hexStart + 6
	if hexEnd > len(p.input) {
		return doc.Color{}, parseError(hexStart, "incomplete color specification; expected 6 hexadecimal digits")
	}

	hex := p.input[hexStart:hexEnd]
	for i := 0; i < len(hex); i++ {
		if !isHexDigit(hex[i]) {
			return doc.Color{}, parseError(hexStart+i, "invalid RGB specification; use hexadecimal digits only")
		}
	}

	r, _ := strconv.ParseUint(hex[0:2], 16, 8)
	g, _ := strconv.ParseUint(hex[2:4], 16, 8)
	b, _ := strconv.ParseUint(hex[4:6], 16, 8)

	bracketIndex := hexEnd
	if !strings.HasPrefix(p.input[bracketIndex:], "]") {
		return doc.Color{}, parseError(bracketIndex, "expected `]` to close color directive")
	}

	braceIndex := bracketIndex + 1
	if !strings.HasPrefix(p.input[braceIndex:], "{") {
		return doc.Color{}, parseError(braceIndex, "expected `{` to start the colored text")
	}

	p.index = braceIndex + 1
	return doc.Color{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
