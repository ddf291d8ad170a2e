package configurator

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9_-]`)
	titleSplitRe  = regexp.MustCompile(`[\s_-]+`)
	titleDropRe   = regexp.MustCompile(`(?i)[^a-z0-9_-]`)
)

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify lowercases, joins whitespace runs with "_" and drops everything outside [a-z0-9_-].
// Accented letters fold to their base letter first ("Antiça" -> "antica").
func Slugify(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = foldAccents(s)
	s = whitespaceRe.ReplaceAllString(s, "_")
	return slugInvalidRe.ReplaceAllString(s, "")
}

// SlugFromOption prefers the last "|" segment of the option code, then the name.
func SlugFromOption(o *domain.Option) string {
	if o == nil {
		return ""
	}
	if code := o.Code; code != "" {
		parts := strings.Split(code, "|")
		if s := Slugify(parts[len(parts)-1]); s != "" {
			return s
		}
	}
	return Slugify(o.Name)
}

func Titleize(slug string) string {
	s := titleDropRe.ReplaceAllString(slug, " ")
	var parts []string
	for _, p := range titleSplitRe.Split(s, -1) {
		if p == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(p[:1])+p[1:])
	}
	return strings.Join(parts, " ")
}

// FormatList joins items as "a", "a and b" or "a, b, and c".
func FormatList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

// SyntheticIDFromSlug hashes the slug with 32-bit wrap-around and returns a strictly
// negative id, so it never collides with engine ids.
func SyntheticIDFromSlug(slug string) int {
	var h int32
	for _, unit := range utf16.Encode([]rune(slug)) {
		h = (h << 5) - h + int32(unit)
	}
	n := int64(h)
	if n < 0 {
		n = -n
	}
	if n == 0 {
		n = 1
	}
	return int(-n)
}
