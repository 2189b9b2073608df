package mfa

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"strconv"
	"time"
)

const (
	otpMin = 100000
	otpMax = 999999
)

var otpSpan = big.NewInt(otpMax - otpMin + 1)

// GenerateOTP returns a 6-digit numeric OTP string drawn uniformly from 100000..999999.
// Uses crypto/rand for randomness.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// HashOTP returns a SHA-256 hash of the OTP string, hex-encoded.
func HashOTP(otp string) string {
	h := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(h[:])
}

// OTPEqual performs constant-time comparison of the provided OTP's hash with the stored hash.
func OTPEqual(providedOTP, storedHash string) bool {
	providedHash := HashOTP(providedOTP)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}

// Check reports whether submitted matches the outstanding code and now is strictly before its expiry.
// An absent code (empty hash or nil expiry) never matches.
func Check(submitted, storedHash string, expiresAt *time.Time, now time.Time) bool {
	if storedHash == "" || expiresAt == nil || submitted == "" {
		return false
	}
	if !now.Before(*expiresAt) {
		return false
	}
	return OTPEqual(submitted, storedHash)
}
