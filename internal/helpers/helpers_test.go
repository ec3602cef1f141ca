package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateFormats(t *testing.T) {
	utc := time.Date(2025, 7, 22, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "22/07/2025, 03:30:00 PM", FormatDateTimeIST(utc))
	assert.Equal(t, "22/07/2025", FormatDDMMYYYY(utc))
	assert.Equal(t, "2025-07-22", FormatYYYYMMDD(utc))
	assert.Equal(t, 15, ConvertToIST(utc).Hour())
	assert.Equal(t, time.Date(2025, 7, 27, 10, 0, 0, 0, time.UTC), AddDays(utc, 5))
	assert.Regexp(t, `^\d{2}/\d{2}/\d{4}, \d{2}:\d{2}:\d{2} (AM|PM)$`, CurrentDateTime())
}

func TestParseDDMMYYYYToIST(t *testing.T) {
	got, err := ParseDDMMYYYYToIST("22072025")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 7, 21, 18, 30, 0, 0, time.UTC)))

	_, err = ParseDDMMYYYYToIST("2025-07-22")
	assert.Error(t, err)
}

func TestFormatReadableDate(t *testing.T) {
	tests := map[string]string{
		"22/07/2025":           "22nd July 2025",
		"2025-07-01":           "1st July 2025",
		"2025-03-13T08:00:00Z": "13th March 2025",
		"23/11/2024":           "23rd November 2024",
	}
	for in, want := range tests {
		got, err := FormatReadableDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := FormatReadableDate("yesterday")
	assert.Error(t, err)
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 112: "112th"}
	for n, want := range cases {
		assert.Equal(t, want, Ordinal(n))
	}
}

func TestFormatWithCommas(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "1,23,456"},
		{1234567, "12,34,567"},
		{-98765432.1, "-9,87,65,432.1"},
		{1.23456, "1.235"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatWithCommas(tt.in))
	}
}

func TestFormatCurrencyINR(t *testing.T) {
	assert.Equal(t, "₹1,23,456.78", FormatCurrencyINR(123456.78))
	assert.Equal(t, "₹500.00", FormatCurrencyINR(500))
	assert.Equal(t, "-₹1,000.50", FormatCurrencyINR(-1000.5))
}

func TestPercentages(t *testing.T) {
	d, err := PercentageToDecimal("25%")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, d, 1e-9)

	_, err = PercentageToDecimal("abc")
	assert.Error(t, err)

	assert.Equal(t, "25.00%", DecimalToPercentage(0.25, 2))
	assert.Equal(t, "12.5%", DecimalToPercentage(0.125, 1))
}

func TestRoundAndClamp(t *testing.T) {
	assert.Equal(t, 3.14, RoundTo(3.14159, 2))
	assert.Equal(t, 3.0, RoundTo(2.5, 0))
	assert.Equal(t, 5.0, Clamp(10, 0, 5))
	assert.Equal(t, 0.0, Clamp(-1, 0, 5))
	assert.Equal(t, 2.0, Clamp(2, 0, 5))
}
