// Package helpers holds date and number formatting shared by exports and jobs.
package helpers

import (
	"fmt"
	"strings"
	"time"
)

// IST is India Standard Time. A fixed zone avoids depending on tzdata.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// CurrentDateTime returns the current IST time as "DD/MM/YYYY, hh:mm:ss AM".
func CurrentDateTime() string {
	return FormatDateTimeIST(time.Now())
}

func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("02/01/2006, 03:04:05 PM")
}

// FormatDDMMYYYY formats the UTC calendar date of t as DD/MM/YYYY.
func FormatDDMMYYYY(t time.Time) string {
	return t.UTC().Format("02/01/2006")
}

// FormatYYYYMMDD formats the UTC calendar date of t as YYYY-MM-DD.
func FormatYYYYMMDD(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func ConvertToIST(t time.Time) time.Time {
	return t.In(IST)
}

// ParseDDMMYYYYToIST parses "22072025" as midnight IST on that day.
func ParseDDMMYYYYToIST(s string) (time.Time, error) {
	t, err := time.ParseInLocation("02012006", strings.TrimSpace(s), IST)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse DDMMYYYY %q: %w", s, err)
	}
	return t, nil
}

// FormatReadableDate accepts DD/MM/YYYY, YYYY-MM-DD or RFC 3339 and returns e.g. "22nd July 2025".
func FormatReadableDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	layouts := []string{"02/01/2006", "2006-01-02", time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ReadableDate(t), nil
		}
	}
	return "", fmt.Errorf("invalid date format: %q", s)
}

func ReadableDate(t time.Time) string {
	return Ordinal(t.Day()) + " " + t.Format("January 2006")
}

// Ordinal renders n with its English suffix: 1st, 2nd, 11th, 23rd.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
