package validation

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML drops every tag from s and returns its text content, unescaped.
// Text inside script and style elements is discarded.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return SanitizeString(s)
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return SanitizeString(b.String())
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(name []byte) bool {
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
