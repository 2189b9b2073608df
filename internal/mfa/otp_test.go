package mfa

import (
	"strconv"
	"testing"
	"time"
)

func TestGenerateOTP_SixDigitRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		otp, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP: %v", err)
		}
		if len(otp) != 6 {
			t.Fatalf("OTP length = %d, want 6 (%q)", len(otp), otp)
		}
		n, err := strconv.Atoi(otp)
		if err != nil {
			t.Fatalf("OTP %q is not numeric", otp)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("OTP %d out of range", n)
		}
	}
}

func TestGenerateOTP_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		otp, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP: %v", err)
		}
		seen[otp] = true
	}
	if len(seen) < 90 {
		t.Errorf("only %d distinct codes in 100 draws", len(seen))
	}
}

func TestHashOTP(t *testing.T) {
	h1 := HashOTP("123456")
	if h1 != HashOTP("123456") {
		t.Error("HashOTP not consistent")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(h1))
	}
	if h1 == HashOTP("654321") {
		t.Error("HashOTP produced same hash for different inputs")
	}
}

func TestOTPEqual(t *testing.T) {
	stored := HashOTP("123456")
	if !OTPEqual("123456", stored) {
		t.Error("OTPEqual should match correct OTP")
	}
	for _, wrong := range []string{"654321", "", "12345", "1234567", "123456 "} {
		if OTPEqual(wrong, stored) {
			t.Errorf("OTPEqual accepted %q", wrong)
		}
	}
}

func TestCheck(t *testing.T) {
	issued := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	exp := issued.Add(5 * time.Minute)
	stored := HashOTP("482913")

	testCases := []struct {
		name      string
		submitted string
		hash      string
		expiresAt *time.Time
		now       time.Time
		want      bool
	}{
		{"correct within window", "482913", stored, &exp, issued.Add(time.Minute), true},
		{"one second before expiry", "482913", stored, &exp, exp.Add(-time.Second), true},
		{"at expiry", "482913", stored, &exp, exp, false},
		{"after expiry", "482913", stored, &exp, issued.Add(5*time.Minute + time.Second), false},
		{"wrong code", "482914", stored, &exp, issued, false},
		{"no code outstanding", "482913", "", nil, issued, false},
		{"hash without expiry", "482913", stored, nil, issued, false},
		{"empty submission", "", stored, &exp, issued, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Check(tc.submitted, tc.hash, tc.expiresAt, tc.now); got != tc.want {
				t.Errorf("Check = %v, want %v", got, tc.want)
			}
		})
	}
}
