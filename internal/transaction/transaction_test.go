package transaction_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

func TestType_Invoiceable(t *testing.T) {
	tests := []struct {
		typ  transaction.Type
		want bool
	}{
		{transaction.TypeSales, true},
		{transaction.TypeProforma, true},
		{transaction.TypePurchases, false},
		{transaction.TypeReceipt, false},
		{transaction.TypePayment, false},
		{transaction.TypeJournal, false},
		{transaction.Type("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.Invoiceable())
		})
	}
}

func TestTransaction_DocumentNumber(t *testing.T) {
	tx := &transaction.Transaction{ID: "64f1c2a9e4b0abc123def456"}
	assert.Equal(t, "DEF456", tx.DocumentNumber())

	tx.InvoiceNumber = " INV-0042 "
	assert.Equal(t, "INV-0042", tx.DocumentNumber())

	short := &transaction.Transaction{ID: "ab1"}
	assert.Equal(t, "AB1", short.ShortID())
}

func TestTransaction_DecodeEmbeddedAndIDRefs(t *testing.T) {
	payload := `{
		"id": "tx-1",
		"type": "sales",
		"invoiceNumber": "INV-7",
		"date": "2024-03-05",
		"totalAmount": 121,
		"lines": [{"name": "Widget", "quantity": 2, "unitPrice": "50", "amount": "100", "taxAmount": 21}],
		"counterparty": {"id": "p-1", "name": "Acme Ltd", "mobile": "+351 912 000 000"},
		"company": {"id": "c-1", "name": "Finny Lda", "client": "cl-9"},
		"bank": {"id": "b-1"}
	}`

	var tx transaction.Transaction
	require.NoError(t, json.Unmarshal([]byte(payload), &tx))

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), tx.Date.Time)
	assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(121)))

	require.True(t, tx.Counterparty.Embedded())
	assert.Equal(t, transaction.KindCustomer, tx.Counterparty.Value.Kind)
	assert.Equal(t, "+351 912 000 000", tx.Counterparty.Value.Phone)

	require.True(t, tx.Company.Embedded())
	assert.Equal(t, "cl-9", tx.Company.Value.Client.ID)
	assert.False(t, tx.Company.Value.Client.Embedded())

	assert.Equal(t, "b-1", tx.Bank.ID)
	assert.False(t, tx.Bank.Embedded())

	assert.True(t, tx.Subtotal().Equal(decimal.NewFromInt(100)))
	assert.True(t, tx.TaxTotal().Equal(decimal.NewFromInt(21)))
}

func TestCounterparty_VendorVariant(t *testing.T) {
	var c transaction.Counterparty
	require.NoError(t, json.Unmarshal([]byte(`{"id":"v-1","vendorName":"Paper Co","email":" ap@paper.co "}`), &c))

	assert.Equal(t, transaction.KindVendor, c.Kind)
	assert.Equal(t, "Paper Co", c.Name)
	assert.Equal(t, "ap@paper.co", c.Email)
}

func TestRef_NullAndMissing(t *testing.T) {
	var tx transaction.Transaction
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","type":"journal","bank":null}`), &tx))

	assert.True(t, tx.Bank.Empty())
	assert.True(t, tx.Counterparty.Empty())
	assert.True(t, tx.Date.IsZero())
}

func TestDate_RFC3339(t *testing.T) {
	var d transaction.Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05T10:00:00Z"`), &d))
	assert.Equal(t, 2024, d.Year())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-03-05"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"05/03/2024"`), &d))
}

func TestAddress_Lines(t *testing.T) {
	a := &transaction.Address{Line1: "1 Rua Augusta", City: "Lisboa", PostalCode: "1100-048", Country: "PT"}
	assert.Equal(t, []string{"1 Rua Augusta", "Lisboa, 1100-048", "PT"}, a.Lines())

	var nilAddr *transaction.Address
	assert.Empty(t, nilAddr.Lines())
}
