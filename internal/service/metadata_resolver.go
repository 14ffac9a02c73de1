package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iconidentify/vidcard/internal/domain"
	"github.com/iconidentify/vidcard/internal/metrics"
	"github.com/iconidentify/vidcard/pkg/youtube"
)

// IconResolver finds a channel's profile image. An empty result means absent.
type IconResolver interface {
	Resolve(ctx context.Context, authorRef, apiKey string) string
}

// ChannelIconResolver resolves channel icons with a search followed by a
// channel detail lookup. It never returns an error; failures mean "no icon".
type ChannelIconResolver struct {
	directory youtube.ChannelDirectory
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewChannelIconResolver creates a new channel icon resolver.
func NewChannelIconResolver(directory youtube.ChannelDirectory, m *metrics.Metrics, logger *slog.Logger) *ChannelIconResolver {
	return &ChannelIconResolver{
		directory: directory,
		metrics:   m,
		logger:    logger,
	}
}

// Resolve returns the icon URL for authorRef, or "" when any step fails.
func (r *ChannelIconResolver) Resolve(ctx context.Context, authorRef, apiKey string) string {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		r.logger.Debug("channel icon skipped: no api key", "author", authorRef)
		return ""
	}
	if authorRef == "" {
		r.logger.Debug("channel icon skipped: no author reference")
		return ""
	}

	start := time.Now()
	channelID, err := r.directory.SearchChannelID(ctx, authorRef, apiKey)
	r.metrics.ObserveLookup(metrics.StageChannelSearch, time.Since(start), err)
	if err != nil {
		r.degrade(metrics.StageChannelSearch, authorRef, err)
		return ""
	}

	start = time.Now()
	icon, err := r.directory.ChannelThumbnail(ctx, channelID, apiKey)
	r.metrics.ObserveLookup(metrics.StageChannelDetail, time.Since(start), err)
	if err != nil {
		r.degrade(metrics.StageChannelDetail, channelID, err)
		return ""
	}

	return icon
}

func (r *ChannelIconResolver) degrade(stage, ref string, err error) {
	r.metrics.RecordUnresolved(stage)
	r.logger.Warn("channel icon unavailable",
		"stage", stage,
		"ref", ref,
		"error", err,
	)
}

// MetadataResolver turns a recognized video URL into card metadata.
type MetadataResolver struct {
	embeds  youtube.EmbedLookup
	icons   IconResolver
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewMetadataResolver creates a new metadata resolver.
func NewMetadataResolver(embeds youtube.EmbedLookup, icons IconResolver, m *metrics.Metrics, logger *slog.Logger) *MetadataResolver {
	return &MetadataResolver{
		embeds:  embeds,
		icons:   icons,
		metrics: m,
		logger:  logger,
	}
}

// Resolve returns metadata for videoURL, or nil when the embed lookup fails.
// The channel icon is only looked up when settings enable it; its failure
// leaves ChannelIconURL empty without failing the whole result.
func (r *MetadataResolver) Resolve(ctx context.Context, videoURL string, settings domain.Settings) (meta *domain.VideoMetadata) {
	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.RecordUnresolved(metrics.StageOEmbed)
			r.logger.Error("panic resolving metadata", "url", videoURL, "panic", fmt.Sprint(rec))
			meta = nil
		}
	}()

	start := time.Now()
	embed, err := r.embeds.Lookup(ctx, videoURL)
	r.metrics.ObserveLookup(metrics.StageOEmbed, time.Since(start), err)
	if err != nil {
		r.metrics.RecordUnresolved(metrics.StageOEmbed)
		r.logger.Warn("metadata unavailable",
			"url", videoURL,
			"stage", metrics.StageOEmbed,
			"error", domain.NewLookupError(videoURL, metrics.StageOEmbed, err),
		)
		return nil
	}

	meta = &domain.VideoMetadata{
		Title:        embed.Title,
		AuthorName:   embed.AuthorName,
		AuthorURL:    embed.AuthorURL,
		ThumbnailURL: embed.ThumbnailURL,
		SourceURL:    videoURL,
	}

	if settings.ChannelIconsEnabled() && r.icons != nil {
		meta.ChannelIconURL = r.icons.Resolve(ctx, youtube.AuthorReference(embed), settings.APIKey)
	}

	return meta
}
