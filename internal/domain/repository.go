package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrShareLinkExpired is returned when a share token exists but is
	// past its expiry.
	ErrShareLinkExpired = errors.New("share link expired")
	// ErrCacheMiss is returned by InsightCache when no entry matches.
	ErrCacheMiss = errors.New("cache miss")
	// ErrUpstream is returned by AdsAPIClient when the ads API call
	// itself failed, as opposed to a local error.
	ErrUpstream = errors.New("upstream ads API error")
)

// BusinessManagerRepository persists registered business managers.
type BusinessManagerRepository interface {
	Upsert(ctx context.Context, bm *BusinessManager) error
	Get(ctx context.Context, bmID string) (*BusinessManager, error)
	List(ctx context.Context) ([]BusinessManager, error)
	Delete(ctx context.Context, bmID string) error
}

// ReportRepository persists insight snapshots.
type ReportRepository interface {
	Save(ctx context.Context, report *Report) error
	Get(ctx context.Context, id int64) (*Report, error)
	List(ctx context.Context, limit int) ([]Report, error)
	LatestFor(ctx context.Context, bmID, objectID string, reportType ReportType, datePreset string) (*Report, error)
}

// ShareLinkRepository persists share tokens.
type ShareLinkRepository interface {
	Create(ctx context.Context, link *ShareLink) error
	GetByToken(ctx context.Context, token string) (*ShareLink, error)
}

// AdsAPIClient talks to the upstream ads platform on behalf of a business
// manager's access token.
type AdsAPIClient interface {
	ValidateToken(ctx context.Context, accessToken string) error
	ListAdAccounts(ctx context.Context, accessToken, bmID string) ([]AdAccount, error)
	ListCampaigns(ctx context.Context, accessToken, adAccountID string) ([]Campaign, error)
	ListAds(ctx context.Context, accessToken, objectID string, limit int) ([]Ad, error)
	AccountInsights(ctx context.Context, accessToken, adAccountID string, q InsightQuery) ([]InsightRecord, error)
	CampaignInsights(ctx context.Context, accessToken, campaignID string, q InsightQuery) ([]InsightRecord, error)
}

// InsightCache is a short-TTL cache for raw upstream insight payloads.
type InsightCache interface {
	Get(ctx context.Context, key string) ([]InsightRecord, error)
	Set(ctx context.Context, key string, records []InsightRecord, ttl time.Duration) error
}

// PDFRenderer renders a reconciled report into a downloadable PDF.
type PDFRenderer interface {
	Render(title string, report ReconciledReport) ([]byte, error)
}
