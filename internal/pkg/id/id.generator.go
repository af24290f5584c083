package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// US Bank routing number, constant for every simulated account.
const RoutingNumber = "091000022"

// Account number prefixes by account type. Combined with six random digits
// they yield the 10-digit numeric account numbers the demo uses.
const (
	PrefixChecking = "1531"
	PrefixSavings  = "1532"
	PrefixCredit   = "4441"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// TransactionID returns a ULID. Monotonic entropy keeps ids generated within
// the same millisecond sortable in creation order, which the ledger relies on
// for stable tie-breaking.
func TransactionID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// AccountNumber generates a candidate 10-digit account number for the given
// type prefix. Uniqueness is the registry's job: it checks its index and asks
// for another candidate on collision.
func AccountNumber(prefix string) string {
	return prefix + randomDigits(6)
}

// ReceiptNumber generates a receipt/reference number shared by both legs of a
// transfer. Format: USB + last six digits of unix millis + four random digits.
func ReceiptNumber() string {
	ms := fmt.Sprintf("%d", time.Now().UnixMilli())
	return "USB" + ms[len(ms)-6:] + randomDigits(4)
}

// ConfirmationCode generates a short uppercase alphanumeric code for funding
// and check-deposit confirmations.
func ConfirmationCode(n int) string {
	const chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	out := make([]byte, n)
	for i := range out {
		idx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		out[i] = chars[idx.Int64()]
	}
	return string(out)
}

// OTPCode generates an n-digit one-time passcode.
func OTPCode(n int) string {
	return randomDigits(n)
}

func randomDigits(n int) string {
	out := make([]byte, n)
	for i := range out {
		d, _ := rand.Int(rand.Reader, big.NewInt(10))
		out[i] = byte('0' + d.Int64())
	}
	return string(out)
}
