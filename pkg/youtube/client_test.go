package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iconidentify/vidcard/internal/config"
)

func testConfig(url string) config.YouTubeConfig {
	return config.YouTubeConfig{
		OEmbedURL:  url + "/oembed",
		DataAPIURL: url + "/v3/",
		Timeout:    5 * time.Second,
		UserAgent:  "vidcard-test",
	}
}

func TestOEmbedClient_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/oembed" {
			t.Errorf("path = %s, want /oembed", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		if r.URL.Query().Get("url") != "https://youtu.be/abc?t=1&x=2" {
			t.Errorf("url param = %q", r.URL.Query().Get("url"))
		}
		if r.Header.Get("User-Agent") != "vidcard-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}

		json.NewEncoder(w).Encode(map[string]string{
			"title":         "Never Gonna Give You Up",
			"author_name":   "Rick Astley",
			"author_url":    "https://www.youtube.com/@RickAstleyYT",
			"thumbnail_url": "https://i.ytimg.com/vi/abc/hqdefault.jpg",
			"type":          "video",
		})
	}))
	defer server.Close()

	client := NewOEmbedClient(testConfig(server.URL))
	embed, err := client.Lookup(context.Background(), "https://youtu.be/abc?t=1&x=2")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	if embed.Title != "Never Gonna Give You Up" {
		t.Errorf("Title = %q", embed.Title)
	}
	if embed.AuthorName != "Rick Astley" {
		t.Errorf("AuthorName = %q", embed.AuthorName)
	}
	if embed.ThumbnailURL != "https://i.ytimg.com/vi/abc/hqdefault.jpg" {
		t.Errorf("ThumbnailURL = %q", embed.ThumbnailURL)
	}
}

func TestOEmbedClient_LookupFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `Not Found`, nil},
		{"unauthorized", http.StatusUnauthorized, `Unauthorized`, nil},
		{"non-json body", http.StatusOK, `<html>oops</html>`, nil},
		{"missing title", http.StatusOK, `{"author_name":"a","thumbnail_url":"t"}`, ErrIncompleteEmbed},
		{"missing author", http.StatusOK, `{"title":"x","thumbnail_url":"t"}`, ErrIncompleteEmbed},
		{"missing thumbnail", http.StatusOK, `{"title":"x","author_name":"a"}`, ErrIncompleteEmbed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewOEmbedClient(testConfig(server.URL))
			embed, err := client.Lookup(context.Background(), "https://youtu.be/abc")
			if err == nil {
				t.Fatalf("Lookup() = %+v, want error", embed)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.status != http.StatusOK {
				var se *StatusError
				if !errors.As(err, &se) || se.StatusCode != tt.status {
					t.Errorf("error = %v, want StatusError %d", err, tt.status)
				}
			}
		})
	}
}

func TestOEmbedClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 20 * time.Millisecond
	client := NewOEmbedClient(cfg)

	if _, err := client.Lookup(context.Background(), "https://youtu.be/abc"); err == nil {
		t.Error("expected timeout error")
	}
}

func TestOEmbedClient_CancelledContext(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewOEmbedClient(testConfig(server.URL))
	if _, err := client.Lookup(ctx, "https://youtu.be/abc"); err == nil {
		t.Error("expected error for cancelled context")
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("cancelled lookup should not reach the server")
	}
}

func TestDataClient_SearchAndThumbnail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "AIza-test" {
			t.Errorf("key = %q", q.Get("key"))
		}
		if q.Get("part") != "snippet" {
			t.Errorf("part = %q", q.Get("part"))
		}

		switch r.URL.Path {
		case "/v3/search":
			if q.Get("type") != "channel" || q.Get("maxResults") != "1" {
				t.Errorf("unexpected search params: %v", q)
			}
			if q.Get("q") != "@RickAstleyYT" {
				t.Errorf("q = %q", q.Get("q"))
			}
			w.Write([]byte(`{"items":[{"snippet":{"channelId":"UC123"}},{"snippet":{"channelId":"UC999"}}]}`))
		case "/v3/channels":
			if q.Get("id") != "UC123" {
				t.Errorf("id = %q", q.Get("id"))
			}
			w.Write([]byte(`{"items":[{"snippet":{"thumbnails":{"default":{"url":"https://yt3.ggpht.com/icon.jpg"}}}}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewDataClient(testConfig(server.URL))
	ctx := context.Background()

	id, err := client.SearchChannelID(ctx, "@RickAstleyYT", "AIza-test")
	if err != nil {
		t.Fatalf("SearchChannelID() error = %v", err)
	}
	if id != "UC123" {
		t.Errorf("channel id = %q, want UC123", id)
	}

	thumb, err := client.ChannelThumbnail(ctx, id, "AIza-test")
	if err != nil {
		t.Fatalf("ChannelThumbnail() error = %v", err)
	}
	if thumb != "https://yt3.ggpht.com/icon.jpg" {
		t.Errorf("thumbnail = %q", thumb)
	}
}

func TestDataClient_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		searchErr  error
		channelErr error
	}{
		{"no items", http.StatusOK, `{"items":[]}`, ErrNoChannel, ErrNoChannel},
		{"no thumbnail", http.StatusOK, `{"items":[{"snippet":{}}]}`, ErrNoChannel, ErrNoThumbnail},
		{"forbidden", http.StatusForbidden, `{"error":{"code":403}}`, nil, nil},
		{"malformed", http.StatusOK, `{"items":`, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewDataClient(testConfig(server.URL))
			ctx := context.Background()

			_, err := client.SearchChannelID(ctx, "someone", "k")
			if err == nil {
				t.Error("SearchChannelID() expected error")
			} else if tt.searchErr != nil && !errors.Is(err, tt.searchErr) {
				t.Errorf("SearchChannelID() error = %v, want %v", err, tt.searchErr)
			}

			_, err = client.ChannelThumbnail(ctx, "UC1", "k")
			if err == nil {
				t.Error("ChannelThumbnail() expected error")
			} else if tt.channelErr != nil && !errors.Is(err, tt.channelErr) {
				t.Errorf("ChannelThumbnail() error = %v, want %v", err, tt.channelErr)
			}
		})
	}
}

func TestDataClient_EmptyKeyMakesNoCall(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewDataClient(testConfig(server.URL))
	if _, err := client.SearchChannelID(context.Background(), "x", ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("SearchChannelID() error = %v, want ErrMissingAPIKey", err)
	}
	if _, err := client.ChannelThumbnail(context.Background(), "x", ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("ChannelThumbnail() error = %v, want ErrMissingAPIKey", err)
	}
	if calls != 0 {
		t.Errorf("server called %d times, want 0", calls)
	}
}

func TestAuthorReference(t *testing.T) {
	tests := []struct {
		name  string
		embed *Embed
		want  string
	}{
		{"handle url", &Embed{AuthorName: "Rick Astley", AuthorURL: "https://www.youtube.com/@RickAstleyYT"}, "@RickAstleyYT"},
		{"handle url with trailing path", &Embed{AuthorName: "Rick", AuthorURL: "https://www.youtube.com/@rick/videos"}, "@rick"},
		{"channel id url", &Embed{AuthorName: "Rick Astley", AuthorURL: "https://www.youtube.com/channel/UC123"}, "Rick Astley"},
		{"no url", &Embed{AuthorName: " Rick Astley "}, "Rick Astley"},
		{"bare at", &Embed{AuthorName: "Rick", AuthorURL: "https://www.youtube.com/@"}, "Rick"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AuthorReference(tt.embed); got != tt.want {
				t.Errorf("AuthorReference() = %q, want %q", got, tt.want)
			}
		})
	}
}
