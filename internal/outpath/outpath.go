// Package outpath derives collision-free, filesystem-safe output paths for
// batch results. Filenames frequently come from untrusted strings (source
// documents, spreadsheet cells), so they are sanitized for Windows rules
// before use and numbered on collision instead of overwriting.
package outpath

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	controlChars = regexp.MustCompile(`[\x00-\x1f]`)
)

// Windows reserved device names, invalid with or without extension.
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

const (
	replacement = "_"
	maxLength   = 120
	maxAttempts = 10000
)

// Sanitize makes a bare filename (no directories) safe:
// invalid and control characters replaced, whitespace collapsed, trailing
// dots/spaces trimmed, reserved device names suffixed, length capped while
// preserving the extension, never empty. Sanitize is idempotent.
func Sanitize(name string) string {
	s := strings.Join(strings.Fields(name), " ")

	s = controlChars.ReplaceAllString(s, replacement)
	s = invalidChars.ReplaceAllString(s, replacement)

	// Windows disallows trailing space or dot in filenames.
	s = strings.TrimRight(s, " .")

	if s == "" {
		s = "output"
	}

	// CON is reserved even as CON.txt, so compare the part before the first
	// dot and suffix the base itself, keeping the extension intact.
	if i := strings.Index(s, "."); i > 0 {
		if _, reserved := reservedNames[strings.ToUpper(s[:i])]; reserved {
			s = s[:i] + replacement + s[i:]
		}
	} else if _, reserved := reservedNames[strings.ToUpper(s)]; reserved {
		s += replacement
	}

	// The cap counts characters, not bytes: slicing bytes would split a
	// multi-byte rune (Hangul names are the common case) and leave the
	// filename invalid UTF-8.
	if runes := []rune(s); len(runes) > maxLength {
		if i := strings.LastIndex(s, "."); i > 0 {
			ext := s[i:]
			keep := maxLength - utf8.RuneCountInString(ext)
			if keep < 1 {
				keep = 1
			}
			s = strings.TrimRight(string(runes[:keep]), " .") + ext
		} else {
			s = strings.TrimRight(string(runes[:maxLength]), " .")
		}
	}

	if s == "" {
		s = "output"
	}
	return s
}

// EnsureDir creates the directory (and parents) if missing.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

// Naming adjusts how the output name is derived from the source.
type Naming struct {
	NewExt string // replacement extension, with or without the dot
	Suffix string // inserted before the extension, e.g. "_masked"
}

// Resolve returns a collision-free path in outputDir for a result derived
// from srcPath. An existing file of the derived name is never overwritten;
// the name gets _1, _2, ... appended until a free slot is found.
func Resolve(outputDir, srcPath string, n Naming) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	ext := n.NewExt
	if ext == "" {
		ext = filepath.Ext(srcPath)
	}
	return ResolveName(outputDir, stem+n.Suffix, ext)
}

// ResolveName is Resolve for names not derived from a source file, e.g. a
// spreadsheet cell value naming a generated document.
func ResolveName(outputDir, name, ext string) (string, error) {
	dir, err := EnsureDir(outputDir)
	if err != nil {
		return "", err
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	base := Sanitize(name)
	candidate := filepath.Join(dir, base+ext)
	if !exists(candidate) {
		return candidate, nil
	}
	for i := 1; i < maxAttempts; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if !exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free output name for %q in %s", name, dir)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
