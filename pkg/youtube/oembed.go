package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/iconidentify/vidcard/internal/config"
)

// maxBodySize caps lookup responses; real payloads are a few KB.
const maxBodySize = 1 << 20

// ErrIncompleteEmbed is returned when the embed lookup omits a required field.
var ErrIncompleteEmbed = errors.New("embed response missing required fields")

// Embed is the subset of an oEmbed response the cards use.
type Embed struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	AuthorURL    string `json:"author_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	ProviderName string `json:"provider_name"`
	Type         string `json:"type"`
}

// EmbedLookup fetches embed info for a video URL.
type EmbedLookup interface {
	Lookup(ctx context.Context, videoURL string) (*Embed, error)
}

// OEmbedClient implements EmbedLookup against the oEmbed endpoint.
type OEmbedClient struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// NewOEmbedClient creates a new oEmbed client.
func NewOEmbedClient(cfg config.YouTubeConfig) *OEmbedClient {
	return &OEmbedClient{
		endpoint:  cfg.OEmbedURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Lookup issues GET <endpoint>?format=json&url=<videoURL>. The response must
// carry a title, author name and thumbnail.
func (c *OEmbedClient) Lookup(ctx context.Context, videoURL string) (*Embed, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("url", videoURL)

	var embed Embed
	if err := getJSON(ctx, c.httpClient, c.endpoint+"?"+q.Encode(), c.userAgent, &embed); err != nil {
		return nil, err
	}

	if embed.Title == "" || embed.AuthorName == "" || embed.ThumbnailURL == "" {
		return nil, ErrIncompleteEmbed
	}

	return &embed, nil
}

// getJSON performs a GET and decodes a 200 JSON body into out.
func getJSON(ctx context.Context, client *http.Client, rawURL, userAgent string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
