// Package scan enumerates link candidates in HTML content together with
// their byte positions, and splices replacements back in by position.
package scan

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iconidentify/vidcard/internal/domain"
	"github.com/iconidentify/vidcard/internal/render"
	"github.com/iconidentify/vidcard/pkg/youtube"
)

// textSkip lists elements whose text never yields textual candidates: links,
// code, raw-text and escapable raw-text elements, and form controls that
// cannot hold an anchor. Markup spliced into a raw-text element would show
// as literal text and be matched again on the next pass.
var textSkip = map[atom.Atom]bool{
	atom.A:         true,
	atom.Script:    true,
	atom.Style:     true,
	atom.Textarea:  true,
	atom.Title:     true,
	atom.Noscript:  true,
	atom.Iframe:    true,
	atom.Xmp:       true,
	atom.Noembed:   true,
	atom.Noframes:  true,
	atom.Plaintext: true,
	atom.Code:      true,
	atom.Pre:       true,
	atom.Select:    true,
	atom.Option:    true,
	atom.Optgroup:  true,
}

// Candidates returns the candidates of content in document order.
//
// In structural mode each <a href> element, start tag through end tag, is a
// candidate; its URL is the href value. Cards and anchors without a closing
// tag are skipped. In textual mode each recognized bare URL in text outside
// links, code and raw-text elements is a candidate; its URL is unescaped.
func Candidates(content string, mode domain.EnrichMode) []domain.CandidateLink {
	if mode == domain.ModeTextual {
		return textCandidates(content)
	}
	return anchorCandidates(content)
}

func anchorCandidates(content string) []domain.CandidateLink {
	var (
		out     []domain.CandidateLink
		pending *domain.CandidateLink
		inCard  bool
		offset  int
	)

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		start := offset
		offset += len(z.Raw())

		switch tt {
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if atom.Lookup(name) != atom.A {
				continue
			}
			// A new anchor implicitly closes an unterminated one.
			pending = nil
			inCard = false

			href, class, found := anchorAttrs(z, hasAttr)
			if render.HasCardClass(class) {
				inCard = true
				continue
			}
			if found {
				pending = &domain.CandidateLink{
					URL:   strings.TrimSpace(href),
					Kind:  domain.CandidateAnchor,
					Start: start,
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) != atom.A {
				continue
			}
			if pending != nil && !inCard {
				pending.End = offset
				out = append(out, *pending)
			}
			pending = nil
			inCard = false
		}
	}

	return out
}

func anchorAttrs(z *html.Tokenizer, more bool) (href, class string, hasHref bool) {
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		switch string(key) {
		case "href":
			if !hasHref {
				href, hasHref = string(val), true
			}
		case "class":
			class = string(val)
		}
	}
	return href, class, hasHref
}

func textCandidates(content string) []domain.CandidateLink {
	var (
		out    []domain.CandidateLink
		depth  = map[atom.Atom]int{}
		skip   int
		offset int
	)

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		start := offset
		offset += len(raw)

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if !textSkip[a] {
				continue
			}
			// An option or optgroup start implicitly closes an open one.
			if (a == atom.Option || a == atom.Optgroup) && depth[a] > 0 {
				continue
			}
			depth[a]++
			skip++
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if textSkip[a] && depth[a] > 0 {
				depth[a]--
				skip--
			}
			// Option end tags are optional; the select end closes them.
			if a == atom.Select {
				for _, o := range []atom.Atom{atom.Option, atom.Optgroup} {
					skip -= depth[o]
					depth[o] = 0
				}
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			for _, r := range youtube.FindVideoURLs(raw) {
				out = append(out, domain.CandidateLink{
					URL:   html.UnescapeString(raw[r[0]:r[1]]),
					Kind:  domain.CandidateText,
					Start: start + r[0],
					End:   start + r[1],
				})
			}
		}
	}

	return out
}

// Edit replaces content[Start:End] with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Apply splices edits into content. Edits must not overlap; bytes outside
// every edit are copied unchanged.
func Apply(content string, edits []Edit) string {
	if len(edits) == 0 {
		return content
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var b strings.Builder
	b.Grow(len(content))
	pos := 0
	for _, e := range sorted {
		if e.Start < pos || e.End > len(content) || e.Start > e.End {
			continue
		}
		b.WriteString(content[pos:e.Start])
		b.WriteString(e.Text)
		pos = e.End
	}
	b.WriteString(content[pos:])
	return b.String()
}
