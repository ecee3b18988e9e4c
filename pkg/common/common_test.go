package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTrxNo(t *testing.T) {
	trx := GenerateTrxNo()
	assert.Len(t, trx, 7)

	const validChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for _, char := range trx {
		assert.Contains(t, validChars, string(char))
	}
}

func TestGenerateAffiliateCode(t *testing.T) {
	code := GenerateAffiliateCode()
	assert.Len(t, code, 9)
	assert.Equal(t, "AF", code[:2])
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV1000", FormatInvoiceNumber(1000))
	assert.Equal(t, "INV1001", FormatInvoiceNumber(1001))
}

func TestParseInvoiceNumber(t *testing.T) {
	assert.Equal(t, int64(1042), ParseInvoiceNumber("INV1042"))
	assert.Equal(t, int64(0), ParseInvoiceNumber("RCPT1042"))
	assert.Equal(t, int64(0), ParseInvoiceNumber("INVabc"))
	assert.Equal(t, int64(0), ParseInvoiceNumber(""))
}

func TestPaginateResponse(t *testing.T) {
	data := []string{"item1", "item2"}

	res := PaginateResponse(data, 100, 1, 10, "")
	assert.Equal(t, 1, res.CurrentPage)
	assert.Equal(t, 10, res.LastPage)
	assert.Equal(t, 2, res.NextPage)
	assert.Equal(t, 0, res.PrevPage)
	assert.Equal(t, int64(100), res.Count)

	res = PaginateResponse(data, 100, 10, 10, "")
	assert.Equal(t, 0, res.NextPage, "no next page past the last")

	res = PaginateResponse(data, 100, 5, 10, "")
	assert.Equal(t, 4, res.PrevPage)
	assert.Equal(t, 6, res.NextPage)
}
