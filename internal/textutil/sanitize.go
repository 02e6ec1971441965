package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// pathSeparatorReplacer replaces characters that would split a name into
// several path segments.
var pathSeparatorReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
)

// SanitizeFileName makes a display title safe to use as a single path segment.
// The name is NFC-normalized so titles typed on different systems map to the
// same bytes on disk, path separators become dashes, and control characters
// are dropped. Other punctuation, including the pipe used by archive names, is
// preserved.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = norm.NFC.String(name)
	name = pathSeparatorReplacer.Replace(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}
