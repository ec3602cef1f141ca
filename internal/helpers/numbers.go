// internal/helpers/numbers.go
package helpers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// groupIndian inserts commas the Indian way: the last three digits, then pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

func splitAbs(n float64, decimals int) (sign, whole, frac string) {
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatFloat(n, 'f', decimals, 64)
	whole, frac, _ = strings.Cut(s, ".")
	return sign, whole, frac
}

// FormatWithCommas formats n with Indian digit grouping and at most three decimals.
func FormatWithCommas(n float64) string {
	sign, whole, frac := splitAbs(RoundTo(n, 3), 3)
	frac = strings.TrimRight(frac, "0")
	if whole == "0" && frac == "" {
		sign = ""
	}
	out := sign + groupIndian(whole)
	if frac != "" {
		out += "." + frac
	}
	return out
}

// FormatCurrencyINR formats amount as rupees, e.g. ₹1,23,456.78.
func FormatCurrencyINR(amount float64) string {
	sign, whole, frac := splitAbs(amount, 2)
	return sign + "₹" + groupIndian(whole) + "." + frac
}

// PercentageToDecimal converts "25%" to 0.25.
func PercentageToDecimal(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q: %w", s, err)
	}
	return v / 100, nil
}

// DecimalToPercentage converts 0.25 to "25.00%" with the given precision.
func DecimalToPercentage(d float64, precision int) string {
	return strconv.FormatFloat(d*100, 'f', precision, 64) + "%"
}

func RoundTo(n float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(n*p) / p
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
