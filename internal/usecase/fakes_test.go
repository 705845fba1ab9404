package usecase

import (
	"context"
	"time"

	"adsboard/internal/domain"
	"adsboard/pkg/metrics"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = metrics.New()

type fakeBMRepo struct {
	managers map[string]*domain.BusinessManager
	upserted []string
	deleted  []string
}

func newFakeBMRepo(managers ...*domain.BusinessManager) *fakeBMRepo {
	r := &fakeBMRepo{managers: map[string]*domain.BusinessManager{}}
	for _, bm := range managers {
		r.managers[bm.BMID] = bm
	}
	return r
}

func (r *fakeBMRepo) Upsert(_ context.Context, bm *domain.BusinessManager) error {
	r.managers[bm.BMID] = bm
	r.upserted = append(r.upserted, bm.BMID)
	return nil
}

func (r *fakeBMRepo) Get(_ context.Context, bmID string) (*domain.BusinessManager, error) {
	bm, ok := r.managers[bmID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return bm, nil
}

func (r *fakeBMRepo) List(_ context.Context) ([]domain.BusinessManager, error) {
	var out []domain.BusinessManager
	for _, bm := range r.managers {
		out = append(out, *bm)
	}
	return out, nil
}

func (r *fakeBMRepo) Delete(_ context.Context, bmID string) error {
	if _, ok := r.managers[bmID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.managers, bmID)
	r.deleted = append(r.deleted, bmID)
	return nil
}

type fakeReportRepo struct {
	saved   []*domain.Report
	latest  *domain.Report
	saveErr error
	nextID  int64
}

func (r *fakeReportRepo) Save(_ context.Context, report *domain.Report) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.nextID++
	report.ID = r.nextID
	report.CreatedAt = time.Now()
	r.saved = append(r.saved, report)
	return nil
}

func (r *fakeReportRepo) Get(_ context.Context, id int64) (*domain.Report, error) {
	for _, report := range r.saved {
		if report.ID == id {
			return report, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeReportRepo) List(_ context.Context, limit int) ([]domain.Report, error) {
	out := make([]domain.Report, 0, len(r.saved))
	for _, report := range r.saved {
		out = append(out, *report)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeReportRepo) LatestFor(_ context.Context, _, _ string, _ domain.ReportType, _ string) (*domain.Report, error) {
	if r.latest == nil {
		return nil, domain.ErrNotFound
	}
	return r.latest, nil
}

type fakeLinkRepo struct {
	created []*domain.ShareLink
	byToken map[string]*domain.ShareLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{byToken: map[string]*domain.ShareLink{}}
}

func (r *fakeLinkRepo) Create(_ context.Context, link *domain.ShareLink) error {
	link.ID = int64(len(r.created) + 1)
	link.CreatedAt = time.Now()
	r.created = append(r.created, link)
	r.byToken[link.Token] = link
	return nil
}

func (r *fakeLinkRepo) GetByToken(_ context.Context, token string) (*domain.ShareLink, error) {
	link, ok := r.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return link, nil
}

type fakeAPI struct {
	records     []domain.InsightRecord
	insightsErr error
	tokenErr    error
	calls       int
	lastQuery   domain.InsightQuery
}

func (a *fakeAPI) ValidateToken(_ context.Context, _ string) error { return a.tokenErr }

func (a *fakeAPI) ListAdAccounts(_ context.Context, _, _ string) ([]domain.AdAccount, error) {
	return []domain.AdAccount{{ID: "act_1", Name: "Main"}}, nil
}

func (a *fakeAPI) ListCampaigns(_ context.Context, _, _ string) ([]domain.Campaign, error) {
	return []domain.Campaign{{ID: "camp_9", Name: "Promo"}}, nil
}

func (a *fakeAPI) ListAds(_ context.Context, _, objectID string, _ int) ([]domain.Ad, error) {
	return []domain.Ad{{ID: "ad_1", Name: "Creative for " + objectID}}, nil
}

func (a *fakeAPI) AccountInsights(_ context.Context, _, _ string, q domain.InsightQuery) ([]domain.InsightRecord, error) {
	a.calls++
	a.lastQuery = q
	return a.records, a.insightsErr
}

func (a *fakeAPI) CampaignInsights(_ context.Context, _, _ string, q domain.InsightQuery) ([]domain.InsightRecord, error) {
	a.calls++
	a.lastQuery = q
	return a.records, a.insightsErr
}

type fakeCache struct {
	entries map[string][]domain.InsightRecord
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]domain.InsightRecord{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]domain.InsightRecord, error) {
	records, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return records, nil
}

func (c *fakeCache) Set(_ context.Context, key string, records []domain.InsightRecord, _ time.Duration) error {
	c.entries[key] = records
	c.sets++
	return nil
}

type fakePDF struct {
	title  string
	report domain.ReconciledReport
	err    error
}

func (p *fakePDF) Render(title string, report domain.ReconciledReport) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.title = title
	p.report = report
	return []byte("%PDF-1.4 fake"), nil
}
