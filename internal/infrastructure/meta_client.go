package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"adsboard/internal/domain"
	"adsboard/pkg/config"
	"adsboard/pkg/logger"
	"adsboard/pkg/metrics"

	"golang.org/x/time/rate"
)

const (
	accountFields  = "id,name,account_status"
	campaignFields = "id,name,status,objective,created_time"
	adFields       = "id,name,status,preview_shareable_link"
	insightFields  = "account_id,account_name,campaign_id,campaign_name," +
		"impressions,clicks,spend,cpc,ctr,reach,frequency,date_start,date_stop"
)

// MetaClient implements domain.AdsAPIClient against a Meta-style graph
// API. Every call carries the access token of the business manager the
// caller selected; retries are capped with a fixed backoff so a flaky
// upstream cannot stall a dashboard refresh indefinitely.
type MetaClient struct {
	client       *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logger.Logger
	metrics      *metrics.Metrics
	rateLimiter  *rate.Limiter
}

// NewMetaClient creates a new ads platform client.
func NewMetaClient(cfg config.UpstreamConfig, logger *logger.Logger, metrics *metrics.Metrics) *MetaClient {
	return &MetaClient{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      cfg.BaseURL,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       logger,
		metrics:      metrics,
		rateLimiter:  rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitPerSecond),
	}
}

// ValidateToken verifies an access token by resolving the caller identity.
func (c *MetaClient) ValidateToken(ctx context.Context, accessToken string) error {
	var out struct {
		ID string `json:"id"`
	}
	params := url.Values{}
	if err := c.getJSON(ctx, "me", "/me", accessToken, params, &out); err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}
	return nil
}

// ListAdAccounts fetches the ad accounts owned by a business manager.
func (c *MetaClient) ListAdAccounts(ctx context.Context, accessToken, bmID string) ([]domain.AdAccount, error) {
	var out struct {
		Data []domain.AdAccount `json:"data"`
	}
	params := url.Values{}
	params.Set("fields", accountFields)
	path := fmt.Sprintf("/%s/owned_ad_accounts", bmID)
	if err := c.getJSON(ctx, "ad_accounts", path, accessToken, params, &out); err != nil {
		return nil, fmt.Errorf("failed to list ad accounts: %w", err)
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"bm_id": bmID,
		"count": len(out.Data),
	}).Info("Fetched ad accounts")

	return out.Data, nil
}

// ListCampaigns fetches the campaigns for an ad account.
func (c *MetaClient) ListCampaigns(ctx context.Context, accessToken, adAccountID string) ([]domain.Campaign, error) {
	var out struct {
		Data []domain.Campaign `json:"data"`
	}
	params := url.Values{}
	params.Set("fields", campaignFields)
	path := fmt.Sprintf("/%s/campaigns", adAccountID)
	if err := c.getJSON(ctx, "campaigns", path, accessToken, params, &out); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"ad_account_id": adAccountID,
		"count":         len(out.Data),
	}).Info("Fetched campaigns")

	return out.Data, nil
}

// ListAds fetches ads under an ad account or a campaign.
func (c *MetaClient) ListAds(ctx context.Context, accessToken, objectID string, limit int) ([]domain.Ad, error) {
	var out struct {
		Data []struct {
			ID                   string `json:"id"`
			Name                 string `json:"name"`
			Status               string `json:"status"`
			PreviewShareableLink string `json:"preview_shareable_link"`
		} `json:"data"`
	}
	params := url.Values{}
	params.Set("fields", adFields)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := fmt.Sprintf("/%s/ads", objectID)
	if err := c.getJSON(ctx, "ads", path, accessToken, params, &out); err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}

	ads := make([]domain.Ad, len(out.Data))
	for i, a := range out.Data {
		ads[i] = domain.Ad{
			ID:          a.ID,
			Name:        a.Name,
			Status:      a.Status,
			PreviewLink: a.PreviewShareableLink,
		}
	}
	return ads, nil
}

// AccountInsights fetches daily campaign-level insight rows for an ad
// account over the requested window.
func (c *MetaClient) AccountInsights(ctx context.Context, accessToken, adAccountID string, q domain.InsightQuery) ([]domain.InsightRecord, error) {
	records, err := c.insights(ctx, accessToken, adAccountID, "campaign", q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account insights: %w", err)
	}
	c.metrics.RecordInsightRecords("account", len(records))
	return records, nil
}

// CampaignInsights fetches daily insight rows for a single campaign.
func (c *MetaClient) CampaignInsights(ctx context.Context, accessToken, campaignID string, q domain.InsightQuery) ([]domain.InsightRecord, error) {
	records, err := c.insights(ctx, accessToken, campaignID, "campaign", q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign insights: %w", err)
	}
	c.metrics.RecordInsightRecords("campaign", len(records))
	return records, nil
}

func (c *MetaClient) insights(ctx context.Context, accessToken, objectID, level string, q domain.InsightQuery) ([]domain.InsightRecord, error) {
	var out struct {
		Data []domain.InsightRecord `json:"data"`
	}

	params := url.Values{}
	params.Set("fields", insightFields)
	params.Set("level", level)
	// Daily granularity; the reconciler depends on per-day rows.
	params.Set("time_increment", "1")

	switch {
	case q.DatePreset != "" && q.DatePreset != "custom":
		params.Set("date_preset", q.DatePreset)
	case q.StartDate != "" && q.EndDate != "":
		tr, err := json.Marshal(map[string]string{"since": q.StartDate, "until": q.EndDate})
		if err != nil {
			return nil, fmt.Errorf("failed to encode time range: %w", err)
		}
		params.Set("time_range", string(tr))
	default:
		params.Set("date_preset", "last_7d")
	}

	path := fmt.Sprintf("/%s/insights", objectID)
	if err := c.getJSON(ctx, "insights", path, accessToken, params, &out); err != nil {
		return nil, err
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"object_id": objectID,
		"level":     level,
		"records":   len(out.Data),
	}).Info("Fetched insights")

	return out.Data, nil
}

// getJSON performs a rate-limited GET with capped retries on transient
// failures and decodes the JSON body into out.
func (c *MetaClient) getJSON(ctx context.Context, endpoint, path string, accessToken string, params url.Values, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordUpstreamFailure(endpoint, "rate_limit")
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	params.Set("access_token", accessToken)
	reqURL := c.baseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryBackoff):
			}
		}

		body, retryable, err := c.doRequest(ctx, endpoint, reqURL)
		if err != nil {
			lastErr = err
			if retryable {
				continue
			}
			return err
		}

		if err := json.Unmarshal(body, out); err != nil {
			c.metrics.RecordUpstreamFailure(endpoint, "json_parse")
			return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
		}
		return nil
	}

	return lastErr
}

func (c *MetaClient) doRequest(ctx context.Context, endpoint, reqURL string) (body []byte, retryable bool, err error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.metrics.RecordUpstreamFailure(endpoint, "request_creation")
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamFailure(endpoint, "network_error")
		return nil, true, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordUpstreamCall(endpoint, fmt.Sprintf("error_%d", resp.StatusCode), duration)
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("%w: status %d", domain.ErrUpstream, resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordUpstreamFailure(endpoint, "read_body")
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	c.metrics.RecordUpstreamCall(endpoint, "success", duration)
	return body, false, nil
}
