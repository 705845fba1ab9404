package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FlexString decodes JSON values that may arrive either as strings or as
// bare numbers. The ads platform serializes metric values as strings, but
// cached payloads and older API versions deliver plain numbers.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	if string(b) == "null" {
		*s = ""
		return nil
	}
	*s = FlexString(b)
	return nil
}

func (s FlexString) String() string { return string(s) }

// InsightRecord is one raw data point as returned by the ads platform,
// typically one per day per campaign when daily granularity is requested.
// The fields the reconciler depends on are modeled explicitly; everything
// else the platform attaches (action breakdowns, reach, frequency, ...)
// is kept in Extra for display-only passthrough.
type InsightRecord struct {
	DateStart    string     `json:"date_start,omitempty"`
	DateStop     string     `json:"date_stop,omitempty"`
	AccountID    string     `json:"account_id,omitempty"`
	AccountName  string     `json:"account_name,omitempty"`
	CampaignID   string     `json:"campaign_id,omitempty"`
	CampaignName string     `json:"campaign_name,omitempty"`
	AdsetName    string     `json:"adset_name,omitempty"`
	AdName       string     `json:"ad_name,omitempty"`
	Impressions  FlexString `json:"impressions,omitempty"`
	Clicks       FlexString `json:"clicks,omitempty"`
	Spend        FlexString `json:"spend,omitempty"`

	Extra map[string]any `json:"-"`
}

var knownInsightFields = []string{
	"date_start", "date_stop", "account_id", "account_name",
	"campaign_id", "campaign_name", "adset_name", "ad_name",
	"impressions", "clicks", "spend",
}

func (r *InsightRecord) UnmarshalJSON(b []byte) error {
	type plain InsightRecord
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range knownInsightFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		p.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err == nil {
				p.Extra[k] = val
			}
		}
	}

	*r = InsightRecord(p)
	return nil
}

func (r InsightRecord) MarshalJSON() ([]byte, error) {
	type plain InsightRecord
	b, err := json.Marshal(plain(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return b, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// DailyBucket holds the consolidated metrics for one calendar day of a
// reconciled series. Estimated marks a same-day bucket whose values were
// projected from recent days because the platform had not reported yet.
type DailyBucket struct {
	Date        string          `json:"date"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Spend       decimal.Decimal `json:"spend"`
	Estimated   bool            `json:"estimated,omitempty"`
}

// InsightTotals are the window-wide scalar totals shown as summary tiles.
// They are summed from the observed records directly, never from estimated
// buckets, so they can diverge from the sum of displayed bars on the
// current day.
type InsightTotals struct {
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Spend       decimal.Decimal `json:"spend"`
	CTR         float64         `json:"ctr"`
}

// ReconciledReport is the chart-ready output of the reconciler: a dense,
// chronologically ordered daily series covering the resolved window with
// no gaps or duplicates, plus the window totals.
type ReconciledReport struct {
	DatePreset string        `json:"date_preset,omitempty"`
	StartDate  string        `json:"start_date"`
	EndDate    string        `json:"end_date"`
	Series     []DailyBucket `json:"series"`
	Totals     InsightTotals `json:"totals"`
}

// ChartData is the series transposed into index-aligned arrays, the shape
// chart libraries consume directly.
type ChartData struct {
	Labels      []string          `json:"labels"`
	Impressions []int64           `json:"impressions"`
	Clicks      []int64           `json:"clicks"`
	Spend       []decimal.Decimal `json:"spend"`
}

// Chart transposes the daily series into per-metric arrays aligned by index.
func (r ReconciledReport) Chart() ChartData {
	c := ChartData{
		Labels:      make([]string, len(r.Series)),
		Impressions: make([]int64, len(r.Series)),
		Clicks:      make([]int64, len(r.Series)),
		Spend:       make([]decimal.Decimal, len(r.Series)),
	}
	for i, b := range r.Series {
		c.Labels[i] = b.Date
		c.Impressions[i] = b.Impressions
		c.Clicks[i] = b.Clicks
		c.Spend[i] = b.Spend
	}
	return c
}

// InsightResult is what the insights endpoints return: the raw rows for the
// tabular breakdown plus the reconciled series and totals for the charts.
type InsightResult struct {
	Insights   []InsightRecord  `json:"insights"`
	Reconciled ReconciledReport `json:"reconciled"`
}

// InsightQuery carries the caller's date selection. DatePreset takes
// precedence unless it is empty or "custom", in which case the explicit
// dates apply.
type InsightQuery struct {
	DatePreset string
	StartDate  string
	EndDate    string
}
