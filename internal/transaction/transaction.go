package transaction

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Type represents the kind of financial transaction.
type Type string

const (
	TypeSales     Type = "sales"
	TypePurchases Type = "purchases"
	TypeReceipt   Type = "receipt"
	TypePayment   Type = "payment"
	TypeJournal   Type = "journal"
	TypeProforma  Type = "proforma"
)

// Invoiceable reports whether documents can be generated and delivered for the type.
func (t Type) Invoiceable() bool {
	return t == TypeSales || t == TypeProforma
}

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	switch t {
	case TypeSales, TypePurchases, TypeReceipt, TypePayment, TypeJournal, TypeProforma:
		return true
	}

	return false
}

// CounterpartyKind returns which side of the trade the counterparty is on for this type.
func (t Type) CounterpartyKind() CounterpartyKind {
	switch t {
	case TypePurchases, TypePayment:
		return KindVendor
	}

	return KindCustomer
}

// Transaction is a read-only financial record fetched from the data service.
type Transaction struct {
	ID              string            `json:"id"`
	Type            Type              `json:"type"`
	InvoiceNumber   string            `json:"invoiceNumber,omitempty"`
	Date            Date              `json:"date"`
	DueDate         *Date             `json:"dueDate,omitempty"`
	Currency        string            `json:"currency,omitempty"`
	TotalAmount     decimal.Decimal   `json:"totalAmount"`
	PaymentMethod   string            `json:"paymentMethod,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Lines           []Line            `json:"lines"`
	Counterparty    Ref[Counterparty] `json:"counterparty"`
	Company         Ref[Company]      `json:"company"`
	Bank            Ref[BankAccount]  `json:"bank"`
	ShippingAddress *Address          `json:"shippingAddress,omitempty"`
}

// Line is a product or service line item.
type Line struct {
	Name      string           `json:"name,omitempty"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Unit      string           `json:"unit,omitempty"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Amount    decimal.Decimal  `json:"amount"`
	TaxRate   *decimal.Decimal `json:"taxRate,omitempty"`
	TaxAmount *decimal.Decimal `json:"taxAmount,omitempty"`
	ProductID string           `json:"productId,omitempty"`
	ServiceID string           `json:"serviceId,omitempty"`
}

// ShortID is the last six characters of the id, uppercased.
func (t *Transaction) ShortID() string {
	id := t.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}

	return strings.ToUpper(id)
}

// DocumentNumber is the invoice number, or ShortID when the transaction has none.
func (t *Transaction) DocumentNumber() string {
	if n := strings.TrimSpace(t.InvoiceNumber); n != "" {
		return n
	}

	return t.ShortID()
}

// Subtotal sums line amounts before tax.
func (t *Transaction) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range t.Lines {
		sum = sum.Add(l.Amount)
	}

	return sum
}

// TaxTotal sums line tax amounts.
func (t *Transaction) TaxTotal() decimal.Decimal {
	sum := decimal.Zero

	for _, l := range t.Lines {
		if l.TaxAmount != nil {
			sum = sum.Add(*l.TaxAmount)
		}
	}

	return sum
}
