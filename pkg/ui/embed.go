// Package ui provides the embedded web pages served by the vidcard server.
package ui

import (
	_ "embed"
)

// IndexHTML is the preview page: paste HTML, run a pass, see the cards.
//
//go:embed index.html
var IndexHTML []byte

// SettingsHTML is the settings page with the two toggles and the key field.
// The key field is only shown while channel icons are on.
//
//go:embed settings.html
var SettingsHTML []byte
