package template_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicer/internal/template"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

func sampleInput() template.Input {
	tax := decimal.RequireFromString("23")

	return template.Input{
		Transaction: &transaction.Transaction{
			ID:            "64f1c2a9e4b0abc123def456",
			Type:          transaction.TypeSales,
			InvoiceNumber: "INV-2024-001",
			Date:          transaction.NewDate(2024, 3, 5),
			Currency:      "EUR",
			TotalAmount:   decimal.RequireFromString("123"),
			PaymentMethod: "Bank transfer",
			Notes:         "Thank you for your business. Payment due within 30 days.",
			Lines: []transaction.Line{
				{
					Name:      "Consulting – café migration with a long description that needs to wrap across lines",
					Quantity:  decimal.NewFromInt(2),
					Unit:      "h",
					UnitPrice: decimal.NewFromInt(50),
					Amount:    decimal.NewFromInt(100),
					TaxAmount: &tax,
				},
			},
		},
		Company: &transaction.Company{
			ID:      "c-1",
			Name:    "Finny Lda",
			TaxID:   "PT500000000",
			Address: &transaction.Address{Line1: "Rua Augusta 1", City: "Lisboa", Country: "Portugal"},
		},
		Counterparty:    &transaction.Counterparty{Kind: transaction.KindCustomer, ID: "p-1", Name: "Acme", Email: "billing@acme.test"},
		ShippingAddress: &transaction.Address{Line1: "Dock 4", City: "Porto"},
		Bank:            &transaction.BankAccount{BankName: "CGD", IBAN: "PT50000201231234567890154"},
		OwnerClient:     &transaction.Client{Name: "Reseller Co", Website: "reseller.test"},
	}
}

func finalize(t *testing.T, out template.Output) []byte {
	t.Helper()

	if out.Builder != nil {
		data, err := out.Builder.Finalize()
		require.NoError(t, err)

		return data
	}

	return out.Bytes
}

func TestRegistry_HasAtLeastFifteenLayouts(t *testing.T) {
	names := template.NewRegistry().Names()

	assert.GreaterOrEqual(t, len(names), 15)
	assert.Contains(t, names, template.Baseline)
}

func TestRegistry_SelectIsTotal(t *testing.T) {
	reg := template.NewRegistry()

	for _, name := range []string{"", " ", "does-not-exist", "CLASSIC", "Modern ", "\x00", "thermal"} {
		t.Run(name, func(t *testing.T) {
			fn := reg.Select(name)
			require.NotNil(t, fn)

			out, err := fn(context.Background(), sampleInput())
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(finalize(t, out), []byte("%PDF")))
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := template.NewRegistry()

	name, _ := reg.Lookup("Modern")
	assert.Equal(t, "modern", name)

	name, _ = reg.Lookup("nope")
	assert.Equal(t, template.Baseline, name)

	assert.True(t, reg.Has("tax-invoice"))
	assert.False(t, reg.Has("nope"))
}

func TestRegistry_RegisterOverrides(t *testing.T) {
	reg := template.NewRegistry()
	sentinel := errors.New("custom")

	reg.Register("Custom", func(context.Context, template.Input) (template.Output, error) {
		return template.Output{}, sentinel
	})

	_, err := reg.Select("custom")(context.Background(), sampleInput())
	assert.ErrorIs(t, err, sentinel)
}

func TestLayouts_RenderEveryVariant(t *testing.T) {
	reg := template.NewRegistry()

	for _, name := range reg.Names() {
		t.Run(name, func(t *testing.T) {
			out, err := reg.Select(name)(context.Background(), sampleInput())
			require.NoError(t, err)

			data := finalize(t, out)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "template %s produced no pdf", name)
		})
	}
}

func TestLayouts_MinimalInputs(t *testing.T) {
	in := template.Input{
		Transaction: &transaction.Transaction{ID: "abc", Type: transaction.TypeProforma},
	}

	out, err := template.NewRegistry().Select("classic")(context.Background(), in)
	require.NoError(t, err)
	assert.NotEmpty(t, finalize(t, out))
}

func TestLayouts_Errors(t *testing.T) {
	fn := template.NewRegistry().Select("classic")

	_, err := fn(context.Background(), template.Input{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fn(ctx, sampleInput())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLayouts_EagerAndDeferredShapes(t *testing.T) {
	reg := template.NewRegistry()

	eager, err := reg.Select("minimal")(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Nil(t, eager.Builder)
	assert.NotEmpty(t, eager.Bytes)

	deferred, err := reg.Select("classic")(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.NotNil(t, deferred.Builder)
	assert.Empty(t, deferred.Bytes)
}
