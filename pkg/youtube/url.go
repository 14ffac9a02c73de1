// Package youtube talks to the YouTube lookup services and recognizes
// YouTube video links.
package youtube

import (
	"regexp"
	"strings"
)

// videoURLPattern anchors the scheme and host so that hosts which merely
// contain the domain never match. Scheme and host are case-insensitive.
var videoURLPattern = regexp.MustCompile(`^(?i:https?://(?:www\.)?(?:youtube\.com|youtu\.be))/\S+$`)

// videoURLInText finds candidates inside free text. The leading boundary
// keeps "xhttps://youtube.com/..." and similar run-ons out.
var videoURLInText = regexp.MustCompile(`(?:^|[^\w/.-])((?i:https?://(?:www\.)?(?:youtube\.com|youtu\.be))/[^\s<>"']+)`)

// IsVideoURL reports whether u is a recognized YouTube video link.
func IsVideoURL(u string) bool {
	return videoURLPattern.MatchString(u)
}

// FindVideoURLs returns the byte ranges of recognized links in text, in order.
// Trailing sentence punctuation is not part of a match.
func FindVideoURLs(text string) [][2]int {
	var out [][2]int
	for _, m := range videoURLInText.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		end = start + len(trimTrailingPunct(text[start:end]))
		if IsVideoURL(text[start:end]) {
			out = append(out, [2]int{start, end})
		}
	}
	return out
}

func trimTrailingPunct(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		if !strings.ContainsRune(".,;:!?)]}", rune(last)) {
			break
		}
		// Keep a closing paren that balances one inside the URL.
		if last == ')' && strings.Count(s, "(") >= strings.Count(s, ")") {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
