package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adsboard/internal/domain"
	"adsboard/internal/reconcile"
	"adsboard/pkg/logger"
	"adsboard/pkg/metrics"
)

// InsightService fetches raw insight rows for an account or campaign and
// turns them into the chart-ready reconciled series the dashboard renders.
// Every fetch is snapshotted as a Report so share links can point at it.
type InsightService struct {
	bms      domain.BusinessManagerRepository
	reports  domain.ReportRepository
	api      domain.AdsAPIClient
	cache    domain.InsightCache
	cacheTTL time.Duration
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewInsightService creates a new insight service.
func NewInsightService(
	bms domain.BusinessManagerRepository,
	reports domain.ReportRepository,
	api domain.AdsAPIClient,
	cache domain.InsightCache,
	cacheTTL time.Duration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *InsightService {
	return &InsightService{
		bms:      bms,
		reports:  reports,
		api:      api,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// AccountInsights returns reconciled daily insights for an ad account.
func (s *InsightService) AccountInsights(ctx context.Context, bmID, adAccountID string, q domain.InsightQuery) (*domain.InsightResult, error) {
	fetch := func(ctx context.Context, token string) ([]domain.InsightRecord, error) {
		return s.api.AccountInsights(ctx, token, adAccountID, q)
	}
	return s.insights(ctx, "account", bmID, adAccountID, domain.ReportTypeAdAccount, q, fetch)
}

// CampaignInsights returns reconciled daily insights for a campaign.
func (s *InsightService) CampaignInsights(ctx context.Context, bmID, campaignID string, q domain.InsightQuery) (*domain.InsightResult, error) {
	fetch := func(ctx context.Context, token string) ([]domain.InsightRecord, error) {
		return s.api.CampaignInsights(ctx, token, campaignID, q)
	}
	return s.insights(ctx, "campaign", bmID, campaignID, domain.ReportTypeCampaign, q, fetch)
}

func (s *InsightService) insights(
	ctx context.Context,
	level, bmID, objectID string,
	reportType domain.ReportType,
	q domain.InsightQuery,
	fetch func(ctx context.Context, token string) ([]domain.InsightRecord, error),
) (*domain.InsightResult, error) {
	log := s.logger.WithContext(ctx)

	bm, err := s.bms.Get(ctx, bmID)
	if err != nil {
		return nil, fmt.Errorf("business manager %s: %w", bmID, err)
	}

	records, fromCache, err := s.fetchCached(ctx, level, objectID, q, bm.AccessToken, fetch)
	if err != nil {
		return nil, err
	}

	now := s.now()
	window := reconcile.ResolveWindow(q.DatePreset, q.StartDate, q.EndDate, now)
	result := reconcile.Reconcile(records, window, now)
	s.metrics.RecordReconciliation(level, window.Preset)

	log.WithFields(map[string]any{
		"level":      level,
		"object_id":  objectID,
		"records":    len(records),
		"days":       len(result.Series),
		"preset":     window.Preset,
		"from_cache": fromCache,
	}).Info("Reconciled insights")

	// Snapshot only fresh fetches; a cache hit was snapshotted already.
	if !fromCache {
		s.saveReport(ctx, bmID, objectID, reportType, window.Preset, records)
	}

	return &domain.InsightResult{Insights: records, Reconciled: result}, nil
}

func (s *InsightService) fetchCached(
	ctx context.Context,
	level, objectID string,
	q domain.InsightQuery,
	token string,
	fetch func(ctx context.Context, token string) ([]domain.InsightRecord, error),
) (records []domain.InsightRecord, fromCache bool, err error) {
	key := fmt.Sprintf("insights:%s:%s:%s:%s:%s", level, objectID, q.DatePreset, q.StartDate, q.EndDate)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		s.metrics.RecordCacheLookup("hit")
		return cached, true, nil
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		// A broken cache should not break the dashboard.
		s.logger.WithContext(ctx).WithError(err).Warn("Insight cache lookup failed")
	}
	s.metrics.RecordCacheLookup("miss")

	records, err = fetch(ctx, token)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch %s insights: %w", level, err)
	}

	if err := s.cache.Set(ctx, key, records, s.cacheTTL); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to cache insights")
	}
	return records, false, nil
}

// saveReport persists the snapshot. Failure is logged, not propagated:
// the user still gets their dashboard even when the report table is down.
func (s *InsightService) saveReport(ctx context.Context, bmID, objectID string, reportType domain.ReportType, datePreset string, records []domain.InsightRecord) {
	report := &domain.Report{
		Name:       reportName(reportType, objectID, records),
		Type:       reportType,
		BMID:       bmID,
		ObjectID:   objectID,
		DatePreset: datePreset,
		Insights:   records,
	}
	if err := s.reports.Save(ctx, report); err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to save report")
		return
	}
	s.metrics.RecordReportSaved()
}

func reportName(reportType domain.ReportType, objectID string, records []domain.InsightRecord) string {
	display := objectID
	if len(records) > 0 {
		switch reportType {
		case domain.ReportTypeCampaign:
			if records[0].CampaignName != "" {
				display = records[0].CampaignName
			}
		default:
			if records[0].AccountName != "" {
				display = records[0].AccountName
			}
		}
	}
	if reportType == domain.ReportTypeCampaign {
		return "Campaign Insights: " + display
	}
	return "Account Insights: " + display
}
