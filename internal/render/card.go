// Package render builds the video card markup that replaces a recognized link.
package render

import (
	"bytes"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/iconidentify/vidcard/internal/domain"
)

// CSS classes of the card and its parts.
const (
	ClassCard        = "vidcard"
	ClassThumbnail   = "vidcard-thumbnail"
	ClassDetails     = "vidcard-details"
	ClassChannelIcon = "vidcard-channel-icon"
	ClassMeta        = "vidcard-meta"
	ClassTitle       = "vidcard-title"
	ClassAuthor      = "vidcard-author"
)

// BuildCard returns the card node for meta. The thumbnail appears only when
// enabled and known; the channel icon only when meta carries one.
func BuildCard(meta domain.VideoMetadata, settings domain.Settings) *html.Node {
	card := element(atom.A, ClassCard,
		html.Attribute{Key: "href", Val: meta.SourceURL},
		html.Attribute{Key: "target", Val: "_blank"},
		html.Attribute{Key: "rel", Val: "noopener noreferrer"},
	)

	if settings.ShowThumbnail && meta.ThumbnailURL != "" {
		card.AppendChild(element(atom.Img, ClassThumbnail,
			html.Attribute{Key: "src", Val: meta.ThumbnailURL},
			html.Attribute{Key: "alt", Val: meta.Title},
			html.Attribute{Key: "loading", Val: "lazy"},
		))
	}

	details := element(atom.Div, ClassDetails)
	if meta.HasChannelIcon() {
		details.AppendChild(element(atom.Img, ClassChannelIcon,
			html.Attribute{Key: "src", Val: meta.ChannelIconURL},
			html.Attribute{Key: "alt", Val: meta.AuthorName},
		))
	}

	info := element(atom.Div, ClassMeta)
	info.AppendChild(textElement(atom.Span, ClassTitle, meta.Title))
	info.AppendChild(textElement(atom.Span, ClassAuthor, meta.AuthorName))
	details.AppendChild(info)
	card.AppendChild(details)

	return card
}

// RenderCard serializes the card for meta.
func RenderCard(meta domain.VideoMetadata, settings domain.Settings) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, BuildCard(meta, settings)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// IsCard reports whether n is a card element.
func IsCard(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return dom.HasClass(n, ClassCard)
}

// InsideCard reports whether n is a card or has a card ancestor.
func InsideCard(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if IsCard(p) {
			return true
		}
	}
	return false
}

// HasCardClass reports whether a class attribute value names the card class.
func HasCardClass(class string) bool {
	for _, c := range strings.Fields(class) {
		if c == ClassCard {
			return true
		}
	}
	return false
}

func element(a atom.Atom, class string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	n.Attr = append(n.Attr, attrs...)
	return n
}

func textElement(a atom.Atom, class, text string) *html.Node {
	n := element(a, class)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
