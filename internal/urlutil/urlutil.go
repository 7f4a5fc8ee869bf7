package urlutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// linkPattern matches absolute HTTP(S) URLs embedded in plain text.
// A link starts with http:// or https:// and runs until the next
// whitespace character. This mirrors how the text-extraction service
// renders links: absolute URLs separated by whitespace.
var linkPattern = regexp.MustCompile(`https?://\S+`)

// Clean strips the fragment identifier from a URL.
// It returns the substring before the first '#', or the input unchanged
// if no fragment is present. Clean is total over all strings and
// idempotent: Clean(Clean(u)) == Clean(u).
//
// Design decision: We operate on the raw string rather than url.Parse
// because the crawl frontier must accept arbitrary URL-shaped text
// scraped from page content, including strings that url.Parse rejects.
func Clean(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// Slugify derives a filesystem-safe name from a URL.
//
// The transformation is: strip the fragment, strip a leading http:// or
// https:// scheme, then replace every character that is not a letter,
// digit, underscore, dot, or forward slash with an underscore, and
// finally replace every forward slash with an underscore. The URL is
// NFC-normalized first so visually identical URLs map to one file.
//
// The result never contains '/', '#', or whitespace. Slugify is
// deterministic and injective enough for realistic documentation URLs;
// collision handling is out of scope.
func Slugify(rawURL string) string {
	s := Clean(rawURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '/':
			b.WriteRune('_')
		case r == '_' || r == '.':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// ExtractLinks scans text for absolute HTTP(S) URLs and returns them in
// order of appearance. No deduplication happens here; the frontier's set
// membership handles duplicates.
func ExtractLinks(text string) []string {
	return linkPattern.FindAllString(text, -1)
}
