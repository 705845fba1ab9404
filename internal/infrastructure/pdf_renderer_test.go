package infrastructure

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"adsboard/internal/domain"
)

func TestFPDFRenderer_Render(t *testing.T) {
	renderer := NewFPDFRenderer()

	report := domain.ReconciledReport{
		DatePreset: "last_3d",
		StartDate:  "2024-06-07",
		EndDate:    "2024-06-10",
		Series: []domain.DailyBucket{
			{Date: "2024-06-07", Impressions: 0, Clicks: 0, Spend: decimal.Zero},
			{Date: "2024-06-08", Impressions: 1500, Clicks: 75, Spend: decimal.RequireFromString("150.00")},
			{Date: "2024-06-09", Impressions: 2000, Clicks: 100, Spend: decimal.RequireFromString("200.00")},
			{Date: "2024-06-10", Impressions: 1750, Clicks: 88, Spend: decimal.RequireFromString("175.00"), Estimated: true},
		},
		Totals: domain.InsightTotals{
			Impressions: 3500,
			Clicks:      175,
			Spend:       decimal.RequireFromString("350.00"),
			CTR:         0.05,
		},
	}

	data, err := renderer.Render("Ad Account Report: Main", report)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Render() produced no output")
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("Render() output does not start with %%PDF header")
	}
}

func TestFPDFRenderer_EmptySeries(t *testing.T) {
	renderer := NewFPDFRenderer()

	report := domain.ReconciledReport{
		DatePreset: "custom",
		StartDate:  "2024-06-01",
		EndDate:    "2024-06-02",
		Totals:     domain.InsightTotals{Spend: decimal.Zero},
	}

	data, err := renderer.Render("Campaign Report: Promo", report)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Render() produced no output")
	}
}
