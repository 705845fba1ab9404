package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func parseDay(s string) (time.Time, error) {
	return time.Parse(dayFormat, s)
}

// NormalizeDateKey reduces a record's date text to the canonical
// YYYY-MM-DD key. ISO dates may carry a time suffix, which is discarded;
// MM/DD/YYYY is converted. Anything that does not reduce to a valid
// calendar day yields "" and the caller decides the record's disposition.
// Normalizing an already-canonical key returns it unchanged.
func NormalizeDateKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return ""
		}
		s = parts[2] + "-" + pad2(parts[0]) + "-" + pad2(parts[1])
	}

	if _, err := parseDay(s); err != nil {
		return ""
	}
	return s
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// parseCount coerces the platform's numeric text into an integer count.
// Missing or non-numeric values count as zero; fractional text is
// truncated toward zero.
func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// parseSpend coerces the platform's currency text into a decimal amount.
// Missing or non-numeric values count as zero.
func parseSpend(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
