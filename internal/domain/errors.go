package domain

import "errors"

// Domain errors.
var (
	// ErrChannelIconRequiresKey is returned when settings enabling channel
	// icons are saved without an API key.
	ErrChannelIconRequiresKey = errors.New("channel icons require a YouTube API key")

	// ErrSettingsStore is returned when the settings store cannot be read or written.
	ErrSettingsStore = errors.New("settings store unavailable")

	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoJobs is returned when there are no jobs to process.
	ErrNoJobs = errors.New("no jobs available")

	// ErrInvalidMode is returned for an unknown enrichment mode.
	ErrInvalidMode = errors.New("invalid enrichment mode")

	// ErrDocumentMode is returned when a document pass is asked for textual mode.
	ErrDocumentMode = errors.New("document passes are structural only")

	// ErrEmptyContent is returned when there is nothing to enrich.
	ErrEmptyContent = errors.New("content is empty")
)

// LookupError wraps a failed external lookup with the URL and stage it
// belongs to.
type LookupError struct {
	URL   string
	Stage string
	Err   error
}

func (e *LookupError) Error() string {
	if e.URL != "" {
		return e.Stage + " [" + e.URL + "]: " + e.Err.Error()
	}
	return e.Stage + ": " + e.Err.Error()
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a new LookupError.
func NewLookupError(url, stage string, err error) *LookupError {
	return &LookupError{
		URL:   url,
		Stage: stage,
		Err:   err,
	}
}
