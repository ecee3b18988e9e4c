package common

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// InvoicePrefix is the human-visible prefix on receipt numbers.
const InvoicePrefix = "INV"

func GenerateTrxNo() string {
	const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 7)
	for i := range result {
		result[i] = characters[r.Intn(len(characters))]
	}
	return string(result)
}

// GenerateAffiliateCode builds a short referral code for lazily created
// affiliate profiles.
func GenerateAffiliateCode() string {
	return "AF" + GenerateTrxNo()
}

func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("%s%d", InvoicePrefix, seq)
}

// ParseInvoiceNumber returns the sequence of an "INV"-prefixed invoice
// number, or 0 if the value is not one.
func ParseInvoiceNumber(invoice string) int64 {
	if !strings.HasPrefix(invoice, InvoicePrefix) {
		return 0
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(invoice, InvoicePrefix), 10, 64)
	if err != nil {
		return 0
	}
	return seq
}
