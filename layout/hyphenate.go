package layout

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// Hyphenator finds permissible break points inside words using Knuth-Liang
// patterns. A nil Hyphenator disables hyphenation.
type Hyphenator struct {
	patterns *patternTrie
}

// LoadHyphenator reads a TeX pattern file, one pattern per line. Blank lines
// and lines starting with '%' are ignored.
func LoadHyphenator(path string) (*Hyphenator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening hyphenation patterns %s: %w", path, err)
	}
	defer f.Close()

	h, err := ReadHyphenator(f)
	if err != nil {
		return nil, fmt.Errorf("reading hyphenation patterns %s: %w", path, err)
	}
	return h, nil
}

// ReadHyphenator parses patterns from a stream.
func ReadHyphenator(r io.Reader) (*Hyphenator, error) {
	h := &Hyphenator{patterns: newPatternTrie()}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		h.patterns.addPattern(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if h.patterns.size() == 0 {
		return nil, fmt.Errorf("pattern stream holds no usable patterns")
	}
	return h, nil
}

// BreakPositions returns the rune offsets inside word after which a hyphen
// may be inserted, in increasing order. Breaks never occur within the first
// two or last two characters.
func (h *Hyphenator) BreakPositions(word string) []int {
	if h == nil {
		return nil
	}
	runeCount := utf8.RuneCountInString(word)
	if runeCount < 5 {
		return nil
	}

	test := "." + strings.ToLower(word) + "."
	v := make([]int, utf8.RuneCountInString(test))
	vIndex := 0
	for pos := range test {
		for _, m := range h.patterns.anchoredMatches(test[pos:]) {
			diff := len(m.values) - m.runeLen
			vs := v[vIndex-diff:]
			for i, val := range m.values {
				if val > vs[i] {
					vs[i] = val
				}
			}
		}
		vIndex++
	}

	// Trim the sentinel dots; markers[i] scores the position after rune i.
	markers := v[1 : len(v)-1]
	var out []int
	for i := range markers {
		if 1 <= i && i < len(markers)-2 && markers[i]%2 != 0 {
			out = append(out, i+1)
		}
	}
	return out
}

// Hyphenate inserts the given separator at every permissible break, which
// keeps pattern behavior observable in tests.
func (h *Hyphenator) Hyphenate(word, sep string) string {
	breaks := h.BreakPositions(word)
	if len(breaks) == 0 {
		return word
	}
	var b strings.Builder
	next := 0
	for i, r := range []rune(word) {
		b.WriteRune(r)
		if next < len(breaks) && breaks[next] == i+1 {
			b.WriteString(sep)
			next++
		}
	}
	return b.String()
}
