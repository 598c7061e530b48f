package fonts

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// LoadTrueType parses a TrueType file and samples its metrics into a Variant
// ready for embedding. Advances are requested at ppem equal to the font's
// units per em, so they come back in font units and scale to the 1/1000 em
// space PDF width arrays use without hinting distortion.
func LoadTrueType(path string, italicAngle float64) (*Variant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", path, err)
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}

	upem := float64(f.UnitsPerEm())
	if upem == 0 {
		return nil, fmt.Errorf("font %s declares zero units per em", path)
	}
	ppem := fixed.I(int(f.UnitsPerEm()))
	toThousandths := func(v fixed.Int26_6) int {
		return int(math.Round(float64(v) / 64 / upem * 1000))
	}

	var buf sfnt.Buffer
	met, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("reading metrics of %s: %w", path, err)
	}

	v := &Variant{
		name:        postScriptName(f, &buf, path),
		ascent:      toThousandths(met.Ascent),
		descent:     -toThousandths(met.Descent),
		capHeight:   toThousandths(met.CapHeight),
		italicAngle: italicAngle,
		program:     data,
	}
	if v.capHeight == 0 {
		v.capHeight = v.ascent
	}
	v.bbox = [4]int{-200, v.descent, 1100, v.ascent}

	for code := 32; code < 256; code++ {
		r := DecodeByte(byte(code))
		gi, err := f.GlyphIndex(&buf, r)
		if err != nil || gi == 0 {
			continue
		}
		adv, err := f.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		v.widths[code] = toThousandths(adv)
	}
	if w := v.widths[' ']; w > 0 {
		v.defaultWidth = w * 2
	} else {
		v.defaultWidth = 500
	}
	return v, nil
}

func postScriptName(f *sfnt.Font, buf *sfnt.Buffer, path string) string {
	if name, err := f.Name(buf, sfnt.NameIDPostScript); err == nil && name != "" {
		return sanitizeFontName(name)
	}
	if name, err := f.Name(buf, sfnt.NameIDFamily); err == nil && name != "" {
		return sanitizeFontName(name)
	}
	base := filepath.Base(path)
	return sanitizeFontName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// sanitizeFontName strips characters that are not valid inside a PDF name.
func sanitizeFontName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r > ' ' && r <= '~' && r != '/' && r != '#' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Unnamed"
	}
	return b.String()
}
