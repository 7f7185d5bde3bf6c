package transaction

import (
	"github.com/MrJamesThe3rd/invoicer/internal/format"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

type transactionResponse struct {
	ID           string           `json:"id"`
	Type         transaction.Type `json:"type"`
	Number       string           `json:"number"`
	Date         string           `json:"date"`
	DueDate      string           `json:"dueDate,omitempty"`
	Currency     string           `json:"currency,omitempty"`
	TotalAmount  string           `json:"totalAmount"`
	Counterparty string           `json:"counterparty,omitempty"`
	Lines        int              `json:"lines"`
	Invoiceable  bool             `json:"invoiceable"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Number:      tx.DocumentNumber(),
		Date:        format.ISODate(tx.Date.Time),
		Currency:    tx.Currency,
		TotalAmount: tx.TotalAmount.StringFixed(2),
		Lines:       len(tx.Lines),
		Invoiceable: tx.Type.Invoiceable(),
	}

	if tx.DueDate != nil {
		resp.DueDate = format.ISODate(tx.DueDate.Time)
	}

	if cp := tx.Counterparty.Value; cp != nil {
		resp.Counterparty = cp.Name
	}

	return resp
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
