package format_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/invoicer/internal/format"
)

func TestAmount(t *testing.T) {
	assert.Equal(t, "1,234.50", format.Number(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "EUR 1,234.50", format.Amount(decimal.RequireFromString("1234.5"), "eur"))
	assert.Equal(t, "0.00", format.Amount(decimal.Zero, " "))
	assert.Equal(t, "10.01", format.Number(decimal.RequireFromString("10.005")))
}

func TestQuantity(t *testing.T) {
	assert.Equal(t, "2", format.Quantity(decimal.NewFromInt(2)))
	assert.Equal(t, "1.5", format.Quantity(decimal.RequireFromString("1.50")))
}

func TestDate(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "05 Mar 2024", format.Date(d))
	assert.Equal(t, "2024-03-05", format.ISODate(d))
	assert.Empty(t, format.Date(time.Time{}))
}
