package layout

import (
	"strings"
)

// frag is a stretch of text drawn in one style.
type frag struct {
	text  string
	style Style
}

// line is a wrapped line ready for drawing.
type line struct {
	frags  []frag
	width  Mm
	spaces int
}

func (l line) height() Mm {
	var h Mm
	for _, f := range l.frags {
		if lh := f.style.LineHeight(); lh > h {
			h = lh
		}
	}
	return h
}

func (l line) ascent() Mm {
	var a Mm
	for _, f := range l.frags {
		if fa := f.style.Ascent(); fa > a {
			a = fa
		}
	}
	return a
}

// token is a word or a run of spaces carrying its style.
type token struct {
	text    string
	style   Style
	isSpace bool
}

func tokenize(frags []frag) []token {
	var out []token
	for _, f := range frags {
		rest := f.text
		for rest != "" {
			if i := strings.IndexByte(rest, ' '); i == 0 {
				j := 0
				for j < len(rest) && rest[j] == ' ' {
					j++
				}
				out = append(out, token{text: rest[:j], style: f.style, isSpace: true})
				rest = rest[j:]
			} else if i > 0 {
				out = append(out, token{text: rest[:i], style: f.style})
				rest = rest[i:]
			} else {
				out = append(out, token{text: rest, style: f.style})
				rest = ""
			}
		}
	}
	return out
}

// wrap breaks tokens into lines no wider than maxW, hyphenating overlong
// words when a hyphenator is available.
func wrap(tokens []token, maxW Mm, h *Hyphenator) []line {
	var lines []line
	var cur line

	flush := func() {
		cur.frags = trimTrailingSpace(&cur)
		lines = append(lines, cur)
		cur = line{}
	}

	push := func(t token) {
		if len(cur.frags) > 0 && sameStyle(cur.frags[len(cur.frags)-1].style, t.style) {
			cur.frags[len(cur.frags)-1].text += t.text
		} else {
			cur.frags = append(cur.frags, frag{text: t.text, style: t.style})
		}
		cur.width += t.style.TextWidth(t.text)
		if t.isSpace {
			cur.spaces += len(t.text)
		}
	}

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t.isSpace {
			if len(cur.frags) == 0 {
				continue // no leading spaces
			}
			push(t)
			continue
		}

		w := t.style.TextWidth(t.text)
		if cur.width+w <= maxW {
			push(t)
			continue
		}

		// The word does not fit. Try to break it with a hyphen.
		head, tail, ok := hyphenSplit(t, maxW-cur.width, h)
		if ok {
			push(head)
			flush()
			tokens[i] = tail
			i--
			continue
		}

		if len(cur.frags) > 0 {
			flush()
			i--
			continue
		}
		// A single word wider than the line is placed as is.
		push(t)
		flush()
	}
	if len(cur.frags) > 0 {
		flush()
	}
	return lines
}

// hyphenSplit finds the largest permissible prefix of the word that fits in
// avail together with a trailing hyphen.
func hyphenSplit(t token, avail Mm, h *Hyphenator) (head, tail token, ok bool) {
	breaks := h.BreakPositions(t.text)
	if len(breaks) == 0 {
		return token{}, token{}, false
	}
	runes := []rune(t.text)
	for i := len(breaks) - 1; i >= 0; i-- {
		prefix := string(runes[:breaks[i]]) + "-"
		if t.style.TextWidth(prefix) <= avail {
			head = token{text: prefix, style: t.style}
			tail = token{text: string(runes[breaks[i]:]), style: t.style}
			return head, tail, true
		}
	}
	return token{}, token{}, false
}

func trimTrailingSpace(l *line) []frag {
	for len(l.frags) > 0 {
		last := &l.frags[len(l.frags)-1]
		trimmed := strings.TrimRight(last.text, " ")
		removed := len(last.text) - len(trimmed)
		if removed > 0 {
			l.width -= last.style.TextWidth(strings.Repeat(" ", removed))
			l.spaces -= removed
			last.text = trimmed
		}
		if last.text == "" {
			l.frags = l.frags[:len(l.frags)-1]
			continue
		}
		break
	}
	return l.frags
}

func sameStyle(a, b Style) bool { return a == b }
