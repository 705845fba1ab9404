package delivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"adsboard/internal/domain"
	"adsboard/internal/usecase"
	"adsboard/pkg/logger"
	"adsboard/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// handles HTTP requests
type HTTPHandlers struct {
	accountService *usecase.AccountService
	insightService *usecase.InsightService
	reportService  *usecase.ReportService
	logger         *logger.Logger
	metrics        *metrics.Metrics
}

// creates new HTTP handlers
func NewHTTPHandlers(
	accountService *usecase.AccountService,
	insightService *usecase.InsightService,
	reportService *usecase.ReportService,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		accountService: accountService,
		insightService: insightService,
		reportService:  reportService,
		logger:         logger,
		metrics:        metrics,
	}
}

// RegisterBusinessManager stores a business manager ID and access token
// after validating the token upstream.
func (h *HTTPHandlers) RegisterBusinessManager(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	var body struct {
		BMID        string `json:"bm_id" binding:"required"`
		AccessToken string `json:"access_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    "bm_id and access_token are required",
			"request_id": requestID,
		})
		return
	}

	ctx := c.Request.Context()
	if err := h.accountService.RegisterBusinessManager(ctx, body.BMID, body.AccessToken); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to register business manager")
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrUpstream) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error":      "Registration failed",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Business manager registered",
		"bm_id":      body.BMID,
		"request_id": requestID,
	})
}

// ListBusinessManagers returns all registered business manager IDs.
func (h *HTTPHandlers) ListBusinessManagers(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	ctx := c.Request.Context()
	ids, err := h.accountService.ListBusinessManagers(ctx)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to list business managers")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to list business managers",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"business_managers": ids,
		"request_id":        requestID,
	})
}

// DeleteBusinessManager removes a registered business manager.
func (h *HTTPHandlers) DeleteBusinessManager(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	bmID := c.Param("bm_id")
	ctx := c.Request.Context()
	if err := h.accountService.DeleteBusinessManager(ctx, bmID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "Business manager not found",
				"message":    "no business manager with id " + bmID,
				"request_id": requestID,
			})
			return
		}
		h.logger.WithContext(ctx).WithError(err).Error("Failed to delete business manager")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to delete business manager",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Business manager deleted",
		"bm_id":      bmID,
		"request_id": requestID,
	})
}

// ListAdAccounts returns the ad accounts of a business manager.
func (h *HTTPHandlers) ListAdAccounts(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	bmID := c.Query("bm_id")
	if bmID == "" {
		h.missingParam(c, requestID, "bm_id")
		return
	}

	ctx := c.Request.Context()
	accounts, err := h.accountService.AdAccounts(ctx, bmID)
	if err != nil {
		h.respondUpstreamError(c, requestID, err, "Failed to list ad accounts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ad_accounts": accounts,
		"request_id":  requestID,
	})
}

// ListCampaigns returns the campaigns of an ad account.
func (h *HTTPHandlers) ListCampaigns(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	bmID := c.Query("bm_id")
	adAccountID := c.Query("ad_account_id")
	if bmID == "" || adAccountID == "" {
		h.missingParam(c, requestID, "bm_id and ad_account_id")
		return
	}

	ctx := c.Request.Context()
	campaigns, err := h.accountService.Campaigns(ctx, bmID, adAccountID)
	if err != nil {
		h.respondUpstreamError(c, requestID, err, "Failed to list campaigns")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns":  campaigns,
		"request_id": requestID,
	})
}

// ListAds returns ads under an ad account or campaign, with previews.
func (h *HTTPHandlers) ListAds(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	bmID := c.Query("bm_id")
	adAccountID := c.Query("ad_account_id")
	campaignID := c.Query("campaign_id")
	if bmID == "" || (adAccountID == "" && campaignID == "") {
		h.missingParam(c, requestID, "bm_id and one of ad_account_id, campaign_id")
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid parameter",
				"message":    "limit must be a non-negative integer",
				"request_id": requestID,
			})
			return
		}
		limit = parsed
	}

	ctx := c.Request.Context()
	ads, err := h.accountService.Ads(ctx, bmID, adAccountID, campaignID, limit)
	if err != nil {
		h.respondUpstreamError(c, requestID, err, "Failed to list ads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ads":        ads,
		"request_id": requestID,
	})
}

// AccountInsights returns reconciled daily insights for an ad account.
func (h *HTTPHandlers) AccountInsights(c *gin.Context) {
	h.insights(c, "ad_account_id", h.insightService.AccountInsights)
}

// CampaignInsights returns reconciled daily insights for a campaign.
func (h *HTTPHandlers) CampaignInsights(c *gin.Context) {
	h.insights(c, "campaign_id", h.insightService.CampaignInsights)
}

func (h *HTTPHandlers) insights(
	c *gin.Context,
	objectParam string,
	fetch func(ctx context.Context, bmID, objectID string, q domain.InsightQuery) (*domain.InsightResult, error),
) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	bmID := c.Query("bm_id")
	objectID := c.Query(objectParam)
	if bmID == "" || objectID == "" {
		h.missingParam(c, requestID, "bm_id and "+objectParam)
		return
	}

	q := domain.InsightQuery{
		DatePreset: c.Query("date_preset"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
	}

	ctx := c.Request.Context()
	result, err := fetch(ctx, bmID, objectID, q)
	if err != nil {
		h.respondUpstreamError(c, requestID, err, "Failed to fetch insights")
		return
	}

	reconciled := result.Reconciled
	c.JSON(http.StatusOK, gin.H{
		"insights":    result.Insights,
		"series":      reconciled.Series,
		"chart":       reconciled.Chart(),
		"totals":      reconciled.Totals,
		"date_preset": reconciled.DatePreset,
		"start_date":  reconciled.StartDate,
		"end_date":    reconciled.EndDate,
		"request_id":  requestID,
	})
}

// ListReports returns stored report snapshots, newest first.
func (h *HTTPHandlers) ListReports(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "Invalid parameter",
				"message":    "limit must be a non-negative integer",
				"request_id": requestID,
			})
			return
		}
		limit = parsed
	}

	ctx := c.Request.Context()
	reports, err := h.reportService.ListReports(ctx, limit)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to list reports")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to list reports",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports":    reports,
		"request_id": requestID,
	})
}

// GetReport returns one stored report snapshot by ID.
func (h *HTTPHandlers) GetReport(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid parameter",
			"message":    "report id must be an integer",
			"request_id": requestID,
		})
		return
	}

	ctx := c.Request.Context()
	report, err := h.reportService.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":      "Report not found",
				"message":    err.Error(),
				"request_id": requestID,
			})
			return
		}
		h.logger.WithContext(ctx).WithError(err).Error("Failed to get report")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to get report",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":     report,
		"request_id": requestID,
	})
}

// CreateShareLink mints a tokenized link to a report scope.
func (h *HTTPHandlers) CreateShareLink(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	var body struct {
		BMID         string `json:"bm_id" binding:"required"`
		AdAccountID  string `json:"ad_account_id"`
		CampaignID   string `json:"campaign_id"`
		DatePreset   string `json:"date_preset"`
		ExpiresHours int    `json:"expires_in_hours"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    "bm_id is required",
			"request_id": requestID,
		})
		return
	}
	if body.AdAccountID == "" && body.CampaignID == "" {
		h.missingParam(c, requestID, "one of ad_account_id, campaign_id")
		return
	}

	ctx := c.Request.Context()
	result, err := h.reportService.CreateShareLink(ctx, usecase.ShareLinkParams{
		BMID:        body.BMID,
		AdAccountID: body.AdAccountID,
		CampaignID:  body.CampaignID,
		DatePreset:  body.DatePreset,
		ExpiresIn:   time.Duration(body.ExpiresHours) * time.Hour,
	})
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to create share link")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to create share link",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"share_url":  result.URL,
		"token":      result.Link.Token,
		"expires_at": result.Link.ExpiresAt.UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}

// ValidateShareLink resolves a share token to its report scope.
func (h *HTTPHandlers) ValidateShareLink(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	token := c.Query("token")
	if token == "" {
		h.missingParam(c, requestID, "token")
		return
	}

	ctx := c.Request.Context()
	link, err := h.reportService.ValidateShareLink(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrShareLinkExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":      "Invalid share link",
				"message":    err.Error(),
				"request_id": requestID,
			})
			return
		}
		h.logger.WithContext(ctx).WithError(err).Error("Failed to validate share link")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to validate share link",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":      true,
		"share_link": link,
		"request_id": requestID,
	})
}

// GeneratePDF renders the reconciled insights for a scope as a PDF.
func (h *HTTPHandlers) GeneratePDF(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()
	requestID := c.GetString("request_id")

	var body struct {
		BMID        string `json:"bm_id" binding:"required"`
		AdAccountID string `json:"ad_account_id"`
		CampaignID  string `json:"campaign_id"`
		DatePreset  string `json:"date_preset"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    "bm_id is required",
			"request_id": requestID,
		})
		return
	}
	if body.AdAccountID == "" && body.CampaignID == "" {
		h.missingParam(c, requestID, "one of ad_account_id, campaign_id")
		return
	}

	ctx := c.Request.Context()
	data, filename, err := h.reportService.GeneratePDF(ctx, usecase.PDFParams{
		BMID:        body.BMID,
		AdAccountID: body.AdAccountID,
		CampaignID:  body.CampaignID,
		DatePreset:  body.DatePreset,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
	})
	if err != nil {
		h.respondUpstreamError(c, requestID, err, "Failed to generate PDF")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "adsboard",
		"version":    "1.0.0",
		"request_id": c.GetString("request_id"),
	})
}

func (h *HTTPHandlers) missingParam(c *gin.Context, requestID, name string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      "Missing required parameter",
		"message":    name + " required",
		"request_id": requestID,
	})
}

// respondUpstreamError maps service errors from API-backed endpoints:
// unknown business manager is a caller mistake, upstream failures are a
// bad gateway, everything else is internal.
func (h *HTTPHandlers) respondUpstreamError(c *gin.Context, requestID string, err error, title string) {
	ctx := c.Request.Context()
	h.logger.WithContext(ctx).WithError(err).Error(title)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"error":      title,
		"message":    err.Error(),
		"request_id": requestID,
	})
}
