package domain

import "strings"

// Settings holds the user-tunable enrichment flags and the credential for
// the channel lookup service. A pass reads a copy and never mutates it.
type Settings struct {
	ShowThumbnail   bool   `json:"show_thumbnail"`
	ShowChannelIcon bool   `json:"show_channel_icon"`
	APIKey          string `json:"api_key"`
}

// DefaultSettings returns the values used when nothing has been stored.
func DefaultSettings() Settings {
	return Settings{
		ShowThumbnail:   true,
		ShowChannelIcon: true,
		APIKey:          "",
	}
}

// HasAPIKey reports whether a non-blank credential is present.
func (s Settings) HasAPIKey() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// Validate checks the save-time invariant: channel icons need a credential.
// In-memory settings may violate it; only persisting them is refused.
func (s Settings) Validate() error {
	if s.ShowChannelIcon && !s.HasAPIKey() {
		return ErrChannelIconRequiresKey
	}
	return nil
}

// ChannelIconsEnabled reports whether a pass should attempt channel icon
// resolution.
func (s Settings) ChannelIconsEnabled() bool {
	return s.ShowChannelIcon
}

// Masked returns a copy safe to hand back to clients.
func (s Settings) Masked() Settings {
	if s.HasAPIKey() {
		s.APIKey = MaskKey(s.APIKey)
	}
	return s
}

// MaskKey hides all but the last four characters of a credential.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// ChannelIconKeyNotice is the one-line message shown to the user when a
// save is refused because channel icons are on without a key.
const ChannelIconKeyNotice = "Channel icons require a YouTube API key."
