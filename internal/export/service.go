// Package export renders every invoiceable transaction in a period through the
// download channel, for month-end handoffs to an accountant.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/invoicer/internal/delivery"
	"github.com/MrJamesThe3rd/invoicer/internal/format"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

const defaultConcurrency = 4

type Lister interface {
	ListInvoiceable(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, req delivery.Request) (*delivery.Attempt, error)
}

// Item links a transaction to the document saved for it, or to the reason
// it could not be saved.
type Item struct {
	Transaction *transaction.Transaction
	Location    string
	Err         error
}

// Progress follows an export. Start is called once the period is listed and
// Done once per transaction, never concurrently.
type Progress interface {
	Start(total int)
	Done(item Item)
}

type Service struct {
	transactions Lister
	deliverer    Deliverer
	concurrency  int
	role         string
}

func NewService(transactions Lister, deliverer Deliverer, role string) *Service {
	return &Service{
		transactions: transactions,
		deliverer:    deliverer,
		concurrency:  defaultConcurrency,
		role:         role,
	}
}

// Export saves a document for each invoiceable transaction matching filter.
// A failed transaction does not stop the others; its Item carries the error.
// Items keep the listing order, newest first.
// progress may be nil.
func (s *Service) Export(ctx context.Context, filter transaction.ListFilter, saver delivery.Saver, progress Progress) ([]Item, error) {
	txs, err := s.transactions.ListInvoiceable(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	items := make([]Item, len(txs))

	var mu sync.Mutex

	report := func(it Item) {
		if progress == nil {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		progress.Done(it)
	}

	if progress != nil {
		progress.Start(len(txs))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, tx := range txs {
		items[i].Transaction = tx

		g.Go(func() error {
			att, err := s.deliverer.Deliver(gctx, delivery.Request{
				Channel:     delivery.ChannelDownload,
				Transaction: tx,
				Role:        s.role,
				Saver:       saver,
			})
			if err != nil {
				items[i].Err = err
			} else {
				items[i].Location = att.Location
			}

			report(items[i])

			return nil
		})
	}

	// Workers record failures on their item and always return nil.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return items, err
	}

	failed := 0

	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}

	slog.Info("export finished", "total", len(items), "failed", failed)

	return items, nil
}

// Summary lists the exported items one per line, ready to paste into an email.
func Summary(items []Item) string {
	var sb strings.Builder

	for _, it := range items {
		tx := it.Transaction

		name := ""
		if cp := tx.Counterparty.Value; cp != nil {
			name = cp.Name
		}

		file := it.Location
		if it.Err != nil {
			file = "not exported: " + it.Err.Error()
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s | %s\n",
			format.ISODate(tx.Date.Time),
			tx.DocumentNumber(),
			name,
			format.Amount(tx.TotalAmount, tx.Currency),
			file,
		)
	}

	return sb.String()
}
