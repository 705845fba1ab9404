package domain

import "time"

// ReportType distinguishes what object a saved report was pulled for.
type ReportType string

const (
	ReportTypeAdAccount ReportType = "ad_account"
	ReportTypeCampaign  ReportType = "campaign"
)

// Report is a snapshot of fetched insights, saved so share links can point
// at the exact data the user was looking at.
type Report struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Type       ReportType      `json:"type"`
	BMID       string          `json:"bm_id"`
	ObjectID   string          `json:"object_id"`
	DatePreset string          `json:"date_preset"`
	Insights   []InsightRecord `json:"insights"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ShareLink is a time-limited token granting read access to a report's
// parameters without authentication.
type ShareLink struct {
	ID          int64     `json:"id"`
	Token       string    `json:"token"`
	ReportID    *int64    `json:"report_id,omitempty"`
	BMID        string    `json:"bm_id"`
	AdAccountID string    `json:"ad_account_id,omitempty"`
	CampaignID  string    `json:"campaign_id,omitempty"`
	DatePreset  string    `json:"date_preset"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expired reports whether the link is past its expiry at the given instant.
func (l ShareLink) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}
