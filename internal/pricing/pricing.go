// Package pricing converts booked time ranges into wallet amounts.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"field-booking-go/internal/store"

	"github.com/shopspring/decimal"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	// Places is the number of minor-unit digits amounts are rounded to
	Places = 2
)

var (
	minutesPerHour = decimal.NewFromInt(60)
	clockLayouts   = []string{"15:04", "15:04:05"}
)

// ParseClock returns the minutes since midnight for an HH:MM or HH:MM:SS value.
// Seconds are accepted but do not count towards the duration.
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: invalid time %q, expected HH:MM", store.ErrValidation, value)
}

// NormalizeClock rewrites a time of day into the canonical HH:MM form used for storage.
// Conflict checks compare the stored strings, so every write must go through here.
func NormalizeClock(value string) (string, error) {
	minutes, err := ParseClock(value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
}

// NormalizeDate accepts YYYY-MM-DD or an RFC3339 timestamp and returns the UTC calendar date.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if d, err := time.Parse(dateLayout, value); err == nil {
		return d.Format(dateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC().Format(dateLayout), nil
	}
	return "", fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", store.ErrValidation, value)
}

// BookingTimestamp combines a normalized date and start time into the canonical UTC timestamp.
func BookingTimestamp(date, start string) (time.Time, error) {
	ts, err := time.ParseInLocation(dateLayout+" "+clockLayout, date+" "+start, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid booking timestamp %s %s", store.ErrValidation, date, start)
	}
	return ts, nil
}

// ComputeAmount prices the half-open range [start, end) at pricePerHour,
// rounded half-up to two decimal places.
func ComputeAmount(start, end string, pricePerHour decimal.Decimal) (decimal.Decimal, error) {
	startMinutes, err := ParseClock(start)
	if err != nil {
		return decimal.Zero, err
	}
	endMinutes, err := ParseClock(end)
	if err != nil {
		return decimal.Zero, err
	}

	duration := endMinutes - startMinutes
	if duration <= 0 {
		return decimal.Zero, fmt.Errorf("%w: end %s is not after start %s", store.ErrInvalidRange, end, start)
	}

	amount := pricePerHour.
		Mul(decimal.NewFromInt(int64(duration))).
		Div(minutesPerHour).
		Round(Places)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: computed amount %s is not positive", store.ErrInvalidRange, amount.StringFixed(Places))
	}

	return amount, nil
}
