package layout

import (
	"strings"
	"unicode"
)

// patternTrie indexes TeX-style hyphenation patterns by rune. Each stored
// pattern carries its inter-character priority values.
type patternTrie struct {
	children map[rune]*patternTrie
	values   []int // non-nil marks the end of a pattern
}

func newPatternTrie() *patternTrie {
	return &patternTrie{children: make(map[rune]*patternTrie)}
}

// addPattern stores a pattern of the form '.hy2p'. Digits encode the
// hyphenation priority of the position before the following character.
func (t *patternTrie) addPattern(s string) {
	var values []int
	runes := []rune(s)
	for i, sym := range runes {
		if unicode.IsDigit(sym) {
			if i == 0 {
				values = append(values, int(sym-'0'))
			}
			continue
		}
		if i < len(runes)-1 && unicode.IsDigit(runes[i+1]) {
			values = append(values, int(runes[i+1]-'0'))
		} else {
			values = append(values, 0)
		}
	}

	pure := strings.Map(func(sym rune) rune {
		if unicode.IsDigit(sym) {
			return -1
		}
		return sym
	}, s)
	if pure == "" {
		return
	}

	node := t
	for _, sym := range pure {
		child := node.children[sym]
		if child == nil {
			child = newPatternTrie()
			node.children[sym] = child
		}
		node = child
	}
	node.values = values
}

type patternMatch struct {
	runeLen int
	values  []int
}

// anchoredMatches returns every stored pattern that is a prefix of s.
func (t *patternTrie) anchoredMatches(s string) []patternMatch {
	var out []patternMatch
	node := t
	runeLen := 0
	for _, sym := range s {
		child, ok := node.children[sym]
		if !ok {
			break
		}
		runeLen++
		if child.values != nil {
			out = append(out, patternMatch{runeLen: runeLen, values: child.values})
		}
		node = child
	}
	return out
}

func (t *patternTrie) size() int {
	n := len(t.children)
	for _, child := range t.children {
		n += child.size()
	}
	return n
}
