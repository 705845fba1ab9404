// Package reconcile aligns the sparse, possibly-duplicated daily insight
// records the ads platform returns onto a dense calendar of days, so
// charts always cover the full requested window. It is pure computation:
// no I/O, no shared state, and it never fails — malformed input degrades
// to zeros rather than errors.
package reconcile

import (
	"math"
	"sort"
	"time"

	"adsboard/internal/domain"

	"github.com/shopspring/decimal"
)

// estimateLookback is how many recent days with data feed the same-day
// estimate when the platform has not reported today's metrics yet.
const estimateLookback = 3

// Reconcile filters records to the window, consolidates duplicates per
// day, fills calendar gaps, and computes the window totals. The daily
// series always covers every day of the window in ascending order; the
// totals reflect only observed records, never gap-fill estimates.
func Reconcile(records []domain.InsightRecord, w Window, now time.Time) domain.ReconciledReport {
	filtered := filterByWindow(records, w)
	buckets := consolidate(filtered)
	series := gapFill(w.Days(), buckets, now.Format(dayFormat))

	return domain.ReconciledReport{
		DatePreset: w.Preset,
		StartDate:  w.StartKey(),
		EndDate:    w.EndKey(),
		Series:     series,
		Totals:     totals(filtered),
	}
}

// filterByWindow keeps records whose normalized date falls inside the
// window. The canonical key format is fixed-width and zero-padded, so
// lexical comparison is exact. Records whose date cannot be normalized
// are kept: they still belong in the window totals even though they can
// never land in a daily bucket.
func filterByWindow(records []domain.InsightRecord, w Window) []domain.InsightRecord {
	start, end := w.StartKey(), w.EndKey()

	var kept []domain.InsightRecord
	for _, rec := range records {
		key := NormalizeDateKey(rec.DateStart)
		if key == "" || (key >= start && key <= end) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// consolidate groups records by normalized date and sums each day's
// metrics. Spend is summed first and rounded once, so per-record rounding
// error cannot compound.
func consolidate(records []domain.InsightRecord) map[string]domain.DailyBucket {
	buckets := make(map[string]domain.DailyBucket)
	for _, rec := range records {
		key := NormalizeDateKey(rec.DateStart)
		if key == "" {
			continue
		}
		b := buckets[key]
		b.Date = key
		b.Impressions += parseCount(rec.Impressions.String())
		b.Clicks += parseCount(rec.Clicks.String())
		b.Spend = b.Spend.Add(parseSpend(rec.Spend.String()))
		buckets[key] = b
	}
	for key, b := range buckets {
		b.Spend = b.Spend.Round(2)
		buckets[key] = b
	}
	return buckets
}

// gapFill produces exactly one bucket per calendar day. Past days with no
// data are zero. The current day, when absent, is estimated from the mean
// of the most recent days that do have data: the platform's same-day
// numbers routinely lag the query.
func gapFill(days []string, buckets map[string]domain.DailyBucket, todayKey string) []domain.DailyBucket {
	series := make([]domain.DailyBucket, 0, len(days))
	for _, day := range days {
		if b, ok := buckets[day]; ok {
			series = append(series, b)
			continue
		}
		if day == todayKey {
			series = append(series, estimateDay(day, buckets))
			continue
		}
		series = append(series, domain.DailyBucket{Date: day, Spend: decimal.Zero})
	}
	return series
}

// estimateDay averages the up-to-estimateLookback most recent prior days
// with data. With no prior data the bucket stays zero.
func estimateDay(day string, buckets map[string]domain.DailyBucket) domain.DailyBucket {
	var prior []string
	for key := range buckets {
		if key < day {
			prior = append(prior, key)
		}
	}
	if len(prior) == 0 {
		return domain.DailyBucket{Date: day, Spend: decimal.Zero}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(prior)))
	if len(prior) > estimateLookback {
		prior = prior[:estimateLookback]
	}

	var impressions, clicks int64
	spend := decimal.Zero
	for _, key := range prior {
		impressions += buckets[key].Impressions
		clicks += buckets[key].Clicks
		spend = spend.Add(buckets[key].Spend)
	}

	n := int64(len(prior))
	return domain.DailyBucket{
		Date:        day,
		Impressions: roundMean(impressions, n),
		Clicks:      roundMean(clicks, n),
		Spend:       spend.Div(decimal.NewFromInt(n)).Round(2),
		Estimated:   true,
	}
}

func roundMean(sum, n int64) int64 {
	return int64(math.Round(float64(sum) / float64(n)))
}

// totals sums the filtered records directly, without bucketing. Dateless
// records are included here even though they never appear in the series.
// CTR is clicks over impressions, zero when there are no impressions.
func totals(records []domain.InsightRecord) domain.InsightTotals {
	var t domain.InsightTotals
	spend := decimal.Zero
	for _, rec := range records {
		t.Impressions += parseCount(rec.Impressions.String())
		t.Clicks += parseCount(rec.Clicks.String())
		spend = spend.Add(parseSpend(rec.Spend.String()))
	}
	t.Spend = spend.Round(2)
	if t.Impressions > 0 {
		t.CTR = float64(t.Clicks) / float64(t.Impressions)
	}
	return t
}
