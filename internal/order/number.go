package order

import (
	"math/rand"
	"strings"
	"time"
)

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewNumber builds a human-readable order number: ORD-<UTC YYYYMMDD>-<6 chars>.
// Uniqueness is enforced by the store; callers retry on ErrDuplicateNumber.
func NewNumber(now time.Time) string {
	var b strings.Builder
	b.WriteString("ORD-")
	b.WriteString(now.UTC().Format("20060102"))
	b.WriteByte('-')
	for i := 0; i < 6; i++ {
		b.WriteByte(numberAlphabet[rand.Intn(len(numberAlphabet))])
	}
	return b.String()
}
