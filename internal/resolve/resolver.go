// Package resolve hydrates the records a transaction only references.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

// ErrCounterpartyMissing means the customer or vendor identity could not be
// resolved for a transaction that requires one.
var ErrCounterpartyMissing = errors.New("counterparty information missing")

var tracer = otel.Tracer("github.com/MrJamesThe3rd/invoicer/internal/resolve")

//go:generate mockgen -source=resolver.go -destination=source_mock.go -package=resolve
type Source interface {
	GetParty(ctx context.Context, id string) (*transaction.Counterparty, error)
	GetVendor(ctx context.Context, id string) (*transaction.Counterparty, error)
	GetCompany(ctx context.Context, id string) (*transaction.Company, error)
	GetClient(ctx context.Context, id string) (*transaction.Client, error)
	GetBankAccount(ctx context.Context, id string) (*transaction.BankAccount, error)
	GetProduct(ctx context.Context, id string) (*transaction.Item, error)
	GetService(ctx context.Context, id string) (*transaction.Item, error)
}

// Entities are the hydrated records a template needs. Every slot except
// Counterparty may be nil.
type Entities struct {
	Counterparty *transaction.Counterparty
	Company      *transaction.Company
	OwnerClient  *transaction.Client
	Bank         *transaction.BankAccount
	Items        ItemNames
}

type Service struct {
	source Source
	// itemLimit caps concurrent catalog lookups.
	itemLimit int
}

func NewService(source Source) *Service {
	return &Service{source: source, itemLimit: 4}
}

// Resolve fetches every referenced record concurrently. Optional lookups that
// fail leave their slot nil; only a missing counterparty on an invoiceable
// transaction is an error. The transaction is never modified.
func (s *Service) Resolve(ctx context.Context, tx *transaction.Transaction) (*Entities, error) {
	ctx, span := tracer.Start(ctx, "resolve.Resolve")
	defer span.End()

	span.SetAttributes(attribute.String("transaction.id", tx.ID))

	var (
		ents Entities
		g    errgroup.Group
	)

	g.Go(func() error {
		ents.Counterparty = s.counterparty(ctx, tx)
		return nil
	})

	g.Go(func() error {
		ents.Company = s.normalizeCompany(ctx, tx, tx.Company)
		if ents.Company != nil {
			ents.OwnerClient = s.normalizeClient(ctx, tx, ents.Company.Client)
		}

		return nil
	})

	g.Go(func() error {
		ents.Bank = s.normalizeBank(ctx, tx, tx.Bank)
		return nil
	})

	g.Go(func() error {
		ents.Items = s.itemNames(ctx, tx)
		return nil
	})

	_ = g.Wait()

	if tx.Type.Invoiceable() && !hasIdentity(ents.Counterparty) {
		span.RecordError(ErrCounterpartyMissing)
		return nil, ErrCounterpartyMissing
	}

	return &ents, nil
}

func hasIdentity(c *transaction.Counterparty) bool {
	return c != nil && strings.TrimSpace(c.Name) != ""
}

func (s *Service) counterparty(ctx context.Context, tx *transaction.Transaction) *transaction.Counterparty {
	ref := tx.Counterparty

	var embedded *transaction.Counterparty

	if ref.Embedded() {
		c := *ref.Value
		if c.Kind == "" {
			c.Kind = tx.Type.CounterpartyKind()
		}

		embedded = &c

		// Email and chat both draw on the embedded copy; it is complete only
		// when it carries both contact fields.
		if c.Email != "" && c.Phone != "" {
			return embedded
		}
	}

	id := ref.ID
	if id == "" && embedded != nil {
		id = embedded.ID
	}

	if id == "" {
		return embedded
	}

	kind := tx.Type.CounterpartyKind()
	if embedded != nil {
		kind = embedded.Kind
	}

	fetch := s.source.GetParty
	if kind == transaction.KindVendor {
		fetch = s.source.GetVendor
	}

	fetched, err := fetch(ctx, id)
	if err != nil {
		degraded(ctx, tx, "counterparty", err)
		return embedded
	}

	return mergeCounterparty(fetched, embedded)
}

// mergeCounterparty fills blanks in the fetched record from the embedded one.
func mergeCounterparty(fetched, embedded *transaction.Counterparty) *transaction.Counterparty {
	out := *fetched
	if embedded == nil {
		return &out
	}

	if out.Kind == "" {
		out.Kind = embedded.Kind
	}

	if out.Name == "" {
		out.Name = embedded.Name
	}

	if out.Email == "" {
		out.Email = embedded.Email
	}

	if out.Phone == "" {
		out.Phone = embedded.Phone
	}

	if out.TaxID == "" {
		out.TaxID = embedded.TaxID
	}

	if out.Address == nil {
		out.Address = embedded.Address
	}

	return &out
}

func (s *Service) normalizeCompany(ctx context.Context, tx *transaction.Transaction, ref transaction.Ref[transaction.Company]) *transaction.Company {
	return normalize(ctx, tx, "company", ref, func(c *transaction.Company) bool {
		return c.Name != ""
	}, s.source.GetCompany)
}

func (s *Service) normalizeClient(ctx context.Context, tx *transaction.Transaction, ref transaction.Ref[transaction.Client]) *transaction.Client {
	return normalize(ctx, tx, "owner_client", ref, func(c *transaction.Client) bool {
		return c.Name != ""
	}, s.source.GetClient)
}

func (s *Service) normalizeBank(ctx context.Context, tx *transaction.Transaction, ref transaction.Ref[transaction.BankAccount]) *transaction.BankAccount {
	return normalize(ctx, tx, "bank", ref, func(b *transaction.BankAccount) bool {
		return b.AccountNumber != "" || b.IBAN != ""
	}, s.source.GetBankAccount)
}

// normalize turns an id-or-record reference into a full record: a complete
// embedded copy is used as-is, otherwise the record is fetched by id. A failed
// fetch falls back to whatever was embedded.
func normalize[T any](
	ctx context.Context,
	tx *transaction.Transaction,
	slot string,
	ref transaction.Ref[T],
	complete func(*T) bool,
	fetch func(context.Context, string) (*T, error),
) *T {
	var embedded *T

	if ref.Embedded() {
		v := *ref.Value
		embedded = &v

		if complete(embedded) {
			return embedded
		}
	}

	if ref.ID == "" {
		return embedded
	}

	fetched, err := fetch(ctx, ref.ID)
	if err != nil {
		degraded(ctx, tx, slot, err)
		return embedded
	}

	return fetched
}

func degraded(ctx context.Context, tx *transaction.Transaction, slot string, err error) {
	slog.WarnContext(ctx, "related record unavailable",
		"slot", slot,
		"transaction_id", tx.ID,
		"error", err,
	)
}

// ItemNames maps catalog references to display names.
type ItemNames map[string]string

func productKey(id string) string { return "product:" + id }
func serviceKey(id string) string { return "service:" + id }

// Name returns the display name for a line: catalog name first, then the
// line's own name, then the bare reference.
func (n ItemNames) Name(l transaction.Line) string {
	if l.ProductID != "" {
		if name := n[productKey(l.ProductID)]; name != "" {
			return name
		}
	}

	if l.ServiceID != "" {
		if name := n[serviceKey(l.ServiceID)]; name != "" {
			return name
		}
	}

	if name := strings.TrimSpace(l.Name); name != "" {
		return name
	}

	if l.ProductID != "" {
		return l.ProductID
	}

	if l.ServiceID != "" {
		return l.ServiceID
	}

	return "Item"
}

func (s *Service) itemNames(ctx context.Context, tx *transaction.Transaction) ItemNames {
	names := ItemNames{}

	type lookup struct {
		key   string
		id    string
		fetch func(context.Context, string) (*transaction.Item, error)
	}

	seen := map[string]bool{}

	var lookups []lookup

	for _, l := range tx.Lines {
		if strings.TrimSpace(l.Name) != "" {
			continue
		}

		switch {
		case l.ProductID != "" && !seen[productKey(l.ProductID)]:
			seen[productKey(l.ProductID)] = true
			lookups = append(lookups, lookup{key: productKey(l.ProductID), id: l.ProductID, fetch: s.source.GetProduct})
		case l.ServiceID != "" && !seen[serviceKey(l.ServiceID)]:
			seen[serviceKey(l.ServiceID)] = true
			lookups = append(lookups, lookup{key: serviceKey(l.ServiceID), id: l.ServiceID, fetch: s.source.GetService})
		}
	}

	if len(lookups) == 0 {
		return names
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	g.SetLimit(s.itemLimit)

	for _, lk := range lookups {
		g.Go(func() error {
			item, err := lk.fetch(ctx, lk.id)
			if err != nil {
				degraded(ctx, tx, lk.key, err)
				return nil
			}

			mu.Lock()
			names[lk.key] = item.Name
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return names
}
