package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/inventory-service/internal/domain"
	"github.com/user/inventory-service/internal/jsonvalue"
	"github.com/user/inventory-service/internal/monitoring"
	"go.uber.org/zap"
)

// Fetcher downloads the upstream page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// PayloadExtractor pulls the embedded JSON payload out of a page.
type PayloadExtractor interface {
	Extract(htmlContent string) (*jsonvalue.Value, bool)
}

// RunRecorder stores an audit record of each pipeline run.
type RunRecorder interface {
	RecordRun(ctx context.Context, run domain.RunRecord) error
}

type nopRecorder struct{}

func (nopRecorder) RecordRun(context.Context, domain.RunRecord) error { return nil }

const recordTimeout = 3 * time.Second

// lastUpdatedLayout is RFC 3339 in UTC with millisecond precision.
const lastUpdatedLayout = "2006-01-02T15:04:05.000Z07:00"

// ServiceConfig holds the per-source settings of the pipeline.
type ServiceConfig struct {
	SourceURL    string
	SourceLabel  string
	FetchTimeout time.Duration
}

// Service runs fetch → extract → locate → normalize → dedupe → filter for
// one request. It keeps no state between calls.
type Service struct {
	fetcher   Fetcher
	extractor PayloadExtractor
	locator   *Locator
	recorder  RunRecorder
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	cfg       ServiceConfig
	now       func() time.Time
}

func NewService(
	f Fetcher,
	e PayloadExtractor,
	loc *Locator,
	rec RunRecorder,
	m *monitoring.Metrics,
	l *zap.Logger,
	cfg ServiceConfig,
) *Service {
	if rec == nil {
		rec = nopRecorder{}
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 20 * time.Second
	}
	return &Service{
		fetcher:   f,
		extractor: e,
		locator:   loc,
		recorder:  rec,
		metrics:   m,
		logger:    l,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Source returns the label reported in results.
func (s *Service) Source() string {
	return s.cfg.SourceLabel
}

// Inventory fetches the upstream page and returns its normalized inventory.
// Errors wrap domain.ErrUpstreamFetch, domain.ErrUpstreamShape or
// domain.ErrNoProductsFound; none are retried and no partial result is returned.
func (s *Service) Inventory(ctx context.Context) (*domain.InventoryResult, error) {
	start := s.now()
	result, status, err := s.run(ctx)
	elapsed := s.now().Sub(start)

	s.metrics.ObserveRun(status)
	run := domain.RunRecord{
		Source:     s.cfg.SourceLabel,
		Status:     status,
		DurationMS: elapsed.Milliseconds(),
		StartedAt:  start.UTC(),
	}
	if err != nil {
		run.FailReason = err.Error()
		s.logger.Warn("inventory run failed",
			zap.String("source", s.cfg.SourceLabel),
			zap.String("status", status),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	} else {
		run.Count = result.Count
		s.metrics.SetProductsReturned(result.Count)
		s.logger.Info("inventory served",
			zap.String("source", s.cfg.SourceLabel),
			zap.Int("count", result.Count),
			zap.Duration("elapsed", elapsed),
		)
	}
	s.record(ctx, run)

	return result, err
}

func (s *Service) run(ctx context.Context) (*domain.InventoryResult, string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	fetchStart := time.Now()
	htmlContent, err := s.fetcher.Fetch(fetchCtx, s.cfg.SourceURL)
	s.metrics.ObserveFetch(time.Since(fetchStart))
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamFetch) {
			err = fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
		}
		return nil, domain.RunFetchFailed, err
	}

	payload, ok := s.extractor.Extract(htmlContent)
	if !ok {
		return nil, domain.RunShapeError, domain.ErrUpstreamShape
	}

	// Next.js keeps page data under props; search the whole payload otherwise.
	root := payload
	if props := payload.Get("props"); !props.IsNull() {
		root = props
	}

	raw := s.locator.Locate(root)
	if len(raw) == 0 {
		return nil, domain.RunNoProducts, domain.ErrNoProductsFound
	}

	products := FilterNamed(Dedupe(NormalizeAll(raw)))
	if len(products) == 0 {
		return nil, domain.RunNoProducts, fmt.Errorf("%w: %d records without a name", domain.ErrNoProductsFound, len(raw))
	}

	return &domain.InventoryResult{
		Source:      s.cfg.SourceLabel,
		LastUpdated: s.now().UTC().Format(lastUpdatedLayout),
		Count:       len(products),
		Inventory:   products,
	}, domain.RunCompleted, nil
}

// record writes the run log entry; a failure there never affects the response.
func (s *Service) record(ctx context.Context, run domain.RunRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := s.recorder.RecordRun(ctx, run); err != nil {
		s.logger.Warn("failed to record run", zap.String("source", run.Source), zap.Error(err))
	}
}
