package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/iconidentify/vidcard/internal/config"
)

var (
	// ErrNoChannel is returned when the channel search has no results.
	ErrNoChannel = errors.New("no channel found")
	// ErrNoThumbnail is returned when channel details carry no default thumbnail.
	ErrNoThumbnail = errors.New("channel has no default thumbnail")
	// ErrMissingAPIKey is returned when a Data API call is attempted without a key.
	ErrMissingAPIKey = errors.New("youtube data api key is empty")
)

// ChannelDirectory resolves channel identifiers and their profile images.
type ChannelDirectory interface {
	// SearchChannelID returns the first channel matching query.
	SearchChannelID(ctx context.Context, query, apiKey string) (string, error)
	// ChannelThumbnail returns the default-size profile image of a channel.
	ChannelThumbnail(ctx context.Context, channelID, apiKey string) (string, error)
}

// DataClient implements ChannelDirectory with the YouTube Data API v3.
type DataClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewDataClient creates a new Data API client.
func NewDataClient(cfg config.YouTubeConfig) *DataClient {
	return &DataClient{
		baseURL:   strings.TrimRight(cfg.DataAPIURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type searchResponse struct {
	Items []struct {
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
}

type channelsResponse struct {
	Items []struct {
		Snippet struct {
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// SearchChannelID calls GET /search?type=channel&q=<query>.
func (c *DataClient) SearchChannelID(ctx context.Context, query, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "channel")
	q.Set("maxResults", "1")
	q.Set("q", query)
	q.Set("key", apiKey)

	var resp searchResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/search?"+q.Encode(), c.userAgent, &resp); err != nil {
		return "", err
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet.ChannelID == "" {
		return "", ErrNoChannel
	}

	return resp.Items[0].Snippet.ChannelID, nil
}

// ChannelThumbnail calls GET /channels?id=<channelID>.
func (c *DataClient) ChannelThumbnail(ctx context.Context, channelID, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", channelID)
	q.Set("key", apiKey)

	var resp channelsResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/channels?"+q.Encode(), c.userAgent, &resp); err != nil {
		return "", err
	}

	if len(resp.Items) == 0 {
		return "", ErrNoChannel
	}

	thumb := resp.Items[0].Snippet.Thumbnails.Default.URL
	if thumb == "" {
		return "", ErrNoThumbnail
	}

	return thumb, nil
}

// AuthorReference derives the channel search query from embed info: the
// @handle of the author URL when it has one, otherwise the author name.
func AuthorReference(e *Embed) string {
	if e == nil {
		return ""
	}
	if u, err := url.Parse(e.AuthorURL); err == nil {
		seg := strings.Trim(u.Path, "/")
		if i := strings.IndexByte(seg, '/'); i >= 0 {
			seg = seg[:i]
		}
		if strings.HasPrefix(seg, "@") && len(seg) > 1 {
			return seg
		}
	}
	return strings.TrimSpace(e.AuthorName)
}
