package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JohannesKaufmann/dom"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/iconidentify/vidcard/internal/domain"
	"github.com/iconidentify/vidcard/internal/metrics"
	"github.com/iconidentify/vidcard/internal/render"
	"github.com/iconidentify/vidcard/internal/repository"
	"github.com/iconidentify/vidcard/internal/scan"
	"github.com/iconidentify/vidcard/pkg/youtube"
)

// Resolver produces card metadata for a recognized URL, or nil when absent.
type Resolver interface {
	Resolve(ctx context.Context, videoURL string, settings domain.Settings) *domain.VideoMetadata
}

// SettingsLoader supplies the settings a background pass runs with.
type SettingsLoader interface {
	Load(ctx context.Context) (domain.Settings, error)
}

// EnrichService runs enrichment passes: it finds video links in content and
// replaces each one it can resolve with a card.
type EnrichService struct {
	resolver Resolver
	settings SettingsLoader
	jobRepo  repository.JobRepository
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewEnrichService creates a new enrichment service.
func NewEnrichService(
	resolver Resolver,
	settings SettingsLoader,
	jobRepo repository.JobRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *EnrichService {
	return &EnrichService{
		resolver: resolver,
		settings: settings,
		jobRepo:  jobRepo,
		metrics:  m,
		logger:   logger,
	}
}

// EnrichHTML returns content with every resolvable video link replaced by a
// card. Candidates are resolved one at a time in document order and the
// replacements are spliced in by position, so bytes outside replaced links
// are unchanged and repeated URLs are handled independently.
func (s *EnrichService) EnrichHTML(ctx context.Context, content string, settings domain.Settings, mode domain.EnrichMode) (string, domain.EnrichReport) {
	start := time.Now()
	defer func() { s.metrics.ObservePass(string(mode), time.Since(start)) }()

	candidates := scan.Candidates(content, mode)
	report := domain.EnrichReport{Candidates: len(candidates)}
	s.metrics.RecordCandidates(string(mode), len(candidates))

	var edits []scan.Edit
	for _, c := range candidates {
		if ctx.Err() != nil {
			s.logger.Debug("pass abandoned", "error", ctx.Err(), "remaining_from", c.Start)
			break
		}
		if !youtube.IsVideoURL(c.URL) {
			continue
		}
		report.Recognized++

		card, ok := s.resolveCard(ctx, c.URL, settings)
		if !ok {
			report.Unresolved++
			continue
		}

		edits = append(edits, scan.Edit{Start: c.Start, End: c.End, Text: card})
		report.Replaced++
		s.metrics.RecordReplacement(string(mode))
	}

	out := scan.Apply(content, edits)

	s.logger.Debug("pass complete",
		"mode", mode,
		"candidates", report.Candidates,
		"replaced", report.Replaced,
		"unresolved", report.Unresolved,
	)
	return out, report
}

func (s *EnrichService) resolveCard(ctx context.Context, videoURL string, settings domain.Settings) (string, bool) {
	meta := s.resolver.Resolve(ctx, videoURL, settings)
	if meta == nil {
		return "", false
	}

	card, err := render.RenderCard(*meta, settings)
	if err != nil {
		s.logger.Warn("render card failed", "url", videoURL, "error", err)
		return "", false
	}
	return card, true
}

// EnrichTree replaces recognized anchors under root with card nodes in place.
// The anchors are collected before any replacement, in document order.
func (s *EnrichService) EnrichTree(ctx context.Context, root *html.Node, settings domain.Settings) domain.EnrichReport {
	const mode = "tree"
	start := time.Now()
	defer func() { s.metrics.ObservePass(mode, time.Since(start)) }()

	anchors := dom.FindAllNodes(root, func(n *html.Node) bool {
		if dom.NodeName(n) != "a" || render.InsideCard(n) {
			return false
		}
		_, ok := dom.GetAttribute(n, "href")
		return ok
	})

	report := domain.EnrichReport{Candidates: len(anchors)}
	s.metrics.RecordCandidates(mode, len(anchors))

	for _, a := range anchors {
		if ctx.Err() != nil {
			break
		}
		href := strings.TrimSpace(dom.GetAttributeOr(a, "href", ""))
		if !youtube.IsVideoURL(href) {
			continue
		}
		report.Recognized++

		meta := s.resolver.Resolve(ctx, href, settings)
		if meta == nil {
			report.Unresolved++
			continue
		}

		dom.ReplaceNode(a, render.BuildCard(*meta, settings))
		report.Replaced++
		s.metrics.RecordReplacement(mode)
	}

	return report
}

// EnrichDocument parses content as a full HTML document, enriches it as a
// tree and renders the result.
func (s *EnrichService) EnrichDocument(ctx context.Context, content string, settings domain.Settings) (string, domain.EnrichReport, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", domain.EnrichReport{}, fmt.Errorf("parse document: %w", err)
	}

	report := s.EnrichTree(ctx, doc, settings)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", report, fmt.Errorf("render document: %w", err)
	}
	return buf.String(), report, nil
}

// Submit queues content for a background pass.
func (s *EnrichService) Submit(ctx context.Context, content string, mode domain.EnrichMode) (*domain.Job, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}

	jobID := domain.JobID("job_" + uuid.New().String()[:8])
	job := domain.NewJob(jobID, mode, content)

	if err := s.jobRepo.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	s.metrics.RecordJob(string(domain.JobStatusQueued))

	s.logger.Info("enrich job submitted",
		"job_id", jobID,
		"mode", mode,
		"bytes", len(content),
	)

	return job, nil
}

// GetJob returns a job by ID.
func (s *EnrichService) GetJob(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	return s.jobRepo.Get(ctx, id)
}

// RunJob performs the pass for a dequeued job with the current settings.
func (s *EnrichService) RunJob(ctx context.Context, job *domain.Job) (string, domain.EnrichReport, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return "", domain.EnrichReport{}, fmt.Errorf("load settings: %w", err)
	}

	out, report := s.EnrichHTML(ctx, job.Input, settings, job.Mode)
	return out, report, nil
}

// Stats returns job queue statistics.
func (s *EnrichService) Stats(ctx context.Context) (*repository.QueueStats, error) {
	return s.jobRepo.Stats(ctx)
}
