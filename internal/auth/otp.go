// internal/auth/otp.go
package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const OTPTTL = 5 * time.Minute

// GenerateOTP returns a random six digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
