package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"adsboard/internal/domain"
	"adsboard/pkg/logger"
	"adsboard/pkg/metrics"
)

// ShareLinkParams describes the scope a share link grants access to.
type ShareLinkParams struct {
	BMID        string
	AdAccountID string
	CampaignID  string
	DatePreset  string
	ExpiresIn   time.Duration // zero means the configured default
}

// ShareLinkResult is the created link plus its public URL.
type ShareLinkResult struct {
	Link *domain.ShareLink
	URL  string
}

// PDFParams selects the insights a PDF export covers.
type PDFParams struct {
	BMID        string
	AdAccountID string
	CampaignID  string
	DatePreset  string
	StartDate   string
	EndDate     string
}

// ReportService handles stored report snapshots, share links and PDF exports.
type ReportService struct {
	reports       domain.ReportRepository
	links         domain.ShareLinkRepository
	insights      *InsightService
	pdf           domain.PDFRenderer
	shareBaseURL  string
	defaultExpiry time.Duration
	logger        *logger.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewReportService creates a new report service.
func NewReportService(
	reports domain.ReportRepository,
	links domain.ShareLinkRepository,
	insights *InsightService,
	pdf domain.PDFRenderer,
	shareBaseURL string,
	defaultExpiry time.Duration,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ReportService {
	return &ReportService{
		reports:       reports,
		links:         links,
		insights:      insights,
		pdf:           pdf,
		shareBaseURL:  strings.TrimRight(shareBaseURL, "/"),
		defaultExpiry: defaultExpiry,
		logger:        logger,
		metrics:       metrics,
		now:           time.Now,
	}
}

// ListReports returns the most recent stored reports, newest first.
func (s *ReportService) ListReports(ctx context.Context, limit int) ([]domain.Report, error) {
	reports, err := s.reports.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// GetReport returns a stored report by ID.
func (s *ReportService) GetReport(ctx context.Context, id int64) (*domain.Report, error) {
	report, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("report %d: %w", id, err)
	}
	return report, nil
}

// CreateShareLink mints a tokenized link scoped to an account or campaign.
// If a matching report snapshot exists the link pins it, otherwise the link
// resolves against live data when opened.
func (s *ReportService) CreateShareLink(ctx context.Context, p ShareLinkParams) (*ShareLinkResult, error) {
	expiry := p.ExpiresIn
	if expiry <= 0 {
		expiry = s.defaultExpiry
	}

	link := &domain.ShareLink{
		Token:       uuid.New().String(),
		BMID:        p.BMID,
		AdAccountID: p.AdAccountID,
		CampaignID:  p.CampaignID,
		DatePreset:  p.DatePreset,
		ExpiresAt:   s.now().Add(expiry),
	}

	objectID, reportType := p.AdAccountID, domain.ReportTypeAdAccount
	if p.CampaignID != "" {
		objectID, reportType = p.CampaignID, domain.ReportTypeCampaign
	}
	report, err := s.reports.LatestFor(ctx, p.BMID, objectID, reportType, p.DatePreset)
	switch {
	case err == nil:
		link.ReportID = &report.ID
	case errors.Is(err, domain.ErrNotFound):
		// No snapshot yet; the link will serve live data.
	default:
		return nil, fmt.Errorf("failed to look up report for share link: %w", err)
	}

	if err := s.links.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create share link: %w", err)
	}
	s.metrics.RecordShareLinkCreated()
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"token":      link.Token,
		"bm_id":      p.BMID,
		"object_id":  objectID,
		"expires_at": link.ExpiresAt,
	}).Info("Created share link")

	return &ShareLinkResult{Link: link, URL: s.shareBaseURL + "/share/" + link.Token}, nil
}

// ValidateShareLink resolves a token to its scope. Unknown tokens surface
// domain.ErrNotFound, expired ones domain.ErrShareLinkExpired.
func (s *ReportService) ValidateShareLink(ctx context.Context, token string) (*domain.ShareLink, error) {
	link, err := s.links.GetByToken(ctx, token)
	if err != nil {
		s.metrics.RecordShareLinkCheck("unknown")
		return nil, fmt.Errorf("share link: %w", err)
	}
	if link.Expired(s.now()) {
		s.metrics.RecordShareLinkCheck("expired")
		return nil, fmt.Errorf("share link %s: %w", token, domain.ErrShareLinkExpired)
	}
	s.metrics.RecordShareLinkCheck("valid")
	return link, nil
}

// GeneratePDF fetches and reconciles insights for the given scope and
// renders them as a PDF. It returns the document bytes and a filename.
func (s *ReportService) GeneratePDF(ctx context.Context, p PDFParams) ([]byte, string, error) {
	q := domain.InsightQuery{DatePreset: p.DatePreset, StartDate: p.StartDate, EndDate: p.EndDate}

	var (
		result *domain.InsightResult
		title  string
	)
	if p.CampaignID != "" {
		res, err := s.insights.CampaignInsights(ctx, p.BMID, p.CampaignID, q)
		if err != nil {
			return nil, "", err
		}
		result = res
		title = "Campaign Report: " + displayName(res.Insights, p.CampaignID, true)
	} else {
		res, err := s.insights.AccountInsights(ctx, p.BMID, p.AdAccountID, q)
		if err != nil {
			return nil, "", err
		}
		result = res
		title = "Ad Account Report: " + displayName(res.Insights, p.AdAccountID, false)
	}

	data, err := s.pdf.Render(title, result.Reconciled)
	if err != nil {
		s.metrics.RecordPDFRender("error")
		return nil, "", fmt.Errorf("failed to render PDF: %w", err)
	}
	s.metrics.RecordPDFRender("success")

	filename := strings.ReplaceAll(title, " ", "_") + ".pdf"
	return data, filename, nil
}

func displayName(records []domain.InsightRecord, fallback string, campaign bool) string {
	if len(records) == 0 {
		return fallback
	}
	if campaign {
		if records[0].CampaignName != "" {
			return records[0].CampaignName
		}
	} else if records[0].AccountName != "" {
		return records[0].AccountName
	}
	return fallback
}
