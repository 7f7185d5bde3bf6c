package transaction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrNotFound = errors.New("transaction not found")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	Type      *Type
	StartDate *time.Time
	EndDate   *time.Time
}

// List returns transactions matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date.Time)
	})

	return txs, nil
}

// ListInvoiceable returns only the transactions that documents can be produced for.
func (s *Service) ListInvoiceable(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	txs, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := txs[:0]

	for _, tx := range txs {
		if tx.Type.Invoiceable() {
			out = append(out, tx)
		}
	}

	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	return s.repo.GetTransaction(ctx, id)
}
