package id

import (
	"strings"
	"testing"
)

func TestAccountNumberFormat(t *testing.T) {
	for _, prefix := range []string{PrefixChecking, PrefixSavings, PrefixCredit} {
		num := AccountNumber(prefix)
		if len(num) != 10 {
			t.Fatalf("AccountNumber(%s) = %q, want 10 digits", prefix, num)
		}
		if !strings.HasPrefix(num, prefix) {
			t.Fatalf("AccountNumber(%s) = %q, want prefix %s", prefix, num, prefix)
		}
		for _, c := range num {
			if c < '0' || c > '9' {
				t.Fatalf("AccountNumber(%s) = %q contains non-digit", prefix, num)
			}
		}
	}
}

func TestReceiptNumberFormat(t *testing.T) {
	r := ReceiptNumber()
	if !strings.HasPrefix(r, "USB") {
		t.Fatalf("ReceiptNumber() = %q, want USB prefix", r)
	}
	if len(r) != 13 {
		t.Fatalf("ReceiptNumber() = %q, want length 13", r)
	}
	for _, c := range r[3:] {
		if c < '0' || c > '9' {
			t.Fatalf("ReceiptNumber() = %q, non-digit after prefix", r)
		}
	}
}

func TestTransactionIDMonotonic(t *testing.T) {
	prev := ""
	for i := 0; i < 100; i++ {
		cur := TransactionID()
		if cur <= prev {
			t.Fatalf("ids not strictly increasing: %q then %q", prev, cur)
		}
		prev = cur
	}
}

func TestOTPCode(t *testing.T) {
	code := OTPCode(6)
	if len(code) != 6 {
		t.Fatalf("OTPCode(6) = %q, want 6 digits", code)
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			t.Fatalf("OTPCode(6) = %q contains non-digit", code)
		}
	}
}

func TestConfirmationCodeLength(t *testing.T) {
	if got := ConfirmationCode(8); len(got) != 8 {
		t.Fatalf("ConfirmationCode(8) = %q, want length 8", got)
	}
}
