package domain

// VideoMetadata is the normalized lookup result for one recognized link.
// It lives only for the pass that created it.
type VideoMetadata struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url"`
	// SourceURL is the matched link and the card's outbound target.
	SourceURL string `json:"source_url"`
	// ChannelIconURL is empty unless channel icon resolution succeeded.
	ChannelIconURL string `json:"channel_icon_url,omitempty"`
}

// HasChannelIcon reports whether a channel icon was resolved.
func (m VideoMetadata) HasChannelIcon() bool {
	return m.ChannelIconURL != ""
}

// CandidateKind tells how a candidate link was found.
type CandidateKind string

const (
	// CandidateAnchor is an existing hyperlink element.
	CandidateAnchor CandidateKind = "anchor"
	// CandidateText is a bare URL inside a text run.
	CandidateText CandidateKind = "text"
)

// CandidateLink is one occurrence of a URL-bearing reference in the input.
// Start and End are byte offsets into the original content; the occurrence
// is replaced by position, never by searching for its text again.
type CandidateLink struct {
	URL   string
	Kind  CandidateKind
	Start int
	End   int
}

// Len returns the length in bytes of the occurrence.
func (c CandidateLink) Len() int {
	return c.End - c.Start
}

// EnrichMode selects the integration style used to find candidates.
type EnrichMode string

const (
	// ModeStructural iterates hyperlink elements and reads their targets.
	ModeStructural EnrichMode = "structural"
	// ModeTextual scans text for bare URLs.
	ModeTextual EnrichMode = "textual"
)

// ParseEnrichMode maps a request value to a mode. Empty means structural.
func ParseEnrichMode(s string) (EnrichMode, error) {
	switch EnrichMode(s) {
	case "", ModeStructural:
		return ModeStructural, nil
	case ModeTextual:
		return ModeTextual, nil
	default:
		return "", ErrInvalidMode
	}
}

// EnrichReport counts what happened during one pass.
type EnrichReport struct {
	Candidates int `json:"candidates"`
	Recognized int `json:"recognized"`
	Replaced   int `json:"replaced"`
	Unresolved int `json:"unresolved"`
}
