package mapper

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"github.com/samber/lo"
)

const (
	UntitledPlaceholder    = "Untitled"
	UnknownStatus          = "unknown"
	NoDescriptionAvailable = "No description available."
	DefaultGenreLimit      = 5
)

// titlePriority is tried after any caller-supplied preferred keys.
var titlePriority = []string{"userPreferred", "en", "english", "ja-ro", "romaji", "ja", "native"}

// ResolveTitle picks a display title from a language-keyed map. Preferred
// keys come first, then the fixed priority list, then the first non-empty
// value by key order. It never returns an empty string.
func ResolveTitle(titles map[string]string, preferred ...string) string {
	for _, key := range append(append([]string{}, preferred...), titlePriority...) {
		if key == "" {
			continue
		}
		if v := strings.TrimSpace(titles[key]); v != "" {
			return v
		}
	}

	keys := lo.Keys(titles)
	sort.Strings(keys)
	for _, key := range keys {
		if v := strings.TrimSpace(titles[key]); v != "" {
			return v
		}
	}
	return UntitledPlaceholder
}

// MergeTitles fills keys missing from primary with values from the
// alternates, in order. MangaDex keeps most translations in altTitles.
func MergeTitles(primary map[string]string, alternates ...map[string]string) map[string]string {
	out := make(map[string]string, len(primary))
	for k, v := range primary {
		out[k] = v
	}
	for _, alt := range alternates {
		for k, v := range alt {
			if strings.TrimSpace(out[k]) == "" {
				out[k] = v
			}
		}
	}
	return out
}

func ResolveStatus(raw string) string {
	status := strings.TrimSpace(raw)
	if status == "" {
		return UnknownStatus
	}
	return strings.ToLower(strings.ReplaceAll(status, "_", " "))
}

// ResolveCover returns the first non-empty candidate, or "".
func ResolveCover(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

// MangaDexCover builds the 512px thumbnail URL for a cover_art file name.
func MangaDexCover(uploadsBase, mangaID, fileName string) string {
	if mangaID == "" || fileName == "" {
		return ""
	}
	return fmt.Sprintf("%s/covers/%s/%s.512.jpg", strings.TrimRight(uploadsBase, "/"), mangaID, fileName)
}

var (
	breakTag      = regexp.MustCompile(`(?i)<br\s*/?>`)
	inlineTag     = regexp.MustCompile(`(?i)</?(i|b|em|strong|p|span|u)(\s[^>]*)?>`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
)

func CleanRichText(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = breakTag.ReplaceAllString(text, "\n")
	text = inlineTag.ReplaceAllString(text, "")
	text = extraNewlines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return NoDescriptionAvailable
	}
	return text
}

// LimitGenres drops blanks and duplicates and keeps at most n genres.
func LimitGenres(genres []string, n int) []string {
	if n <= 0 {
		n = DefaultGenreLimit
	}
	out := lo.Uniq(lo.Compact(lo.Map(genres, func(g string, _ int) string {
		return strings.TrimSpace(g)
	})))
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Fold lowercases s and strips accents so "Shōnen" matches "shonen".
func Fold(s string) string {
	return strings.ToLower(unidecode.Unidecode(s))
}
