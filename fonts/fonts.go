package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
)

// EnvFontsDir overrides the font search path when set.
const EnvFontsDir = "PDG_FONTS_DIR"

var faceSuffixes = [4]string{"Regular", "Bold", "Italic", "BoldItalic"}

// DirCandidates returns the directories searched for font files, most
// specific first: the explicit directory when non-empty, the environment
// override, a fonts directory next to the executable and one under the
// current working directory.
func DirCandidates(explicit string) []string {
	var dirs []string
	if explicit != "" {
		dirs = append(dirs, explicit)
	}
	if env := os.Getenv(EnvFontsDir); env != "" {
		dirs = append(dirs, env)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "fonts"))
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(cwd, "fonts"))
	}
	return dirs
}

// LoadFamily loads the four faces of a TrueType family from dir. Files are
// expected as <name>-Regular.ttf, <name>-Bold.ttf, <name>-Italic.ttf and
// <name>-BoldItalic.ttf; the family is unusable unless all four load.
func LoadFamily(dir, name string) (*Family, error) {
	var variants [4]*Variant
	var errs error
	for i, suffix := range faceSuffixes {
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.ttf", name, suffix))
		angle := 0.0
		if strings.Contains(suffix, "Italic") {
			angle = -12
		}
		v, err := LoadTrueType(path, angle)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		variants[i] = v
	}
	if errs != nil {
		return nil, fmt.Errorf("loading family %s from %s: %w", name, dir, errs)
	}
	return &Family{
		name:       name,
		regular:    variants[0],
		bold:       variants[1],
		italic:     variants[2],
		boldItalic: variants[3],
	}, nil
}

// FindFamily searches the candidate directories for a complete family and
// loads the first one found. The returned error enumerates every directory
// tried so a misconfigured setup is diagnosable from the message alone.
func FindFamily(explicit, name string) (*Family, error) {
	dirs := DirCandidates(explicit)
	var errs error
	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, name+"-Regular.ttf")); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("no %s-Regular.ttf in %s", name, dir))
			continue
		}
		fam, err := LoadFamily(dir, name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		return fam, nil
	}
	return nil, fmt.Errorf("font family %s not found: %w", name, errs)
}
