// Package template holds the named document layouts a transaction can be
// rendered with.
package template

import (
	"context"
	"sort"
	"strings"

	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

// Baseline is used whenever the requested template is unknown or unset.
const Baseline = "classic"

// ItemNamer maps a line item to the name printed on the document.
type ItemNamer interface {
	Name(l transaction.Line) string
}

// Input is the fixed argument set every template receives. Only Transaction
// is mandatory; the trailing fields are zero when they could not be resolved.
type Input struct {
	Transaction     *transaction.Transaction
	Company         *transaction.Company
	Counterparty    *transaction.Counterparty
	Items           ItemNamer
	ShippingAddress *transaction.Address
	Bank            *transaction.BankAccount
	OwnerClient     *transaction.Client
}

// Builder is returned by templates that defer serialization until asked.
type Builder interface {
	Finalize() ([]byte, error)
}

// Output is what a template hands back: finished bytes or a Builder.
type Output struct {
	Bytes   []byte
	Builder Builder
}

type RenderFn func(ctx context.Context, in Input) (Output, error)

// Registry maps template names to render functions. Register everything
// before the registry is shared; lookups are read-only afterwards.
type Registry struct {
	fns map[string]RenderFn
}

// NewRegistry returns a registry with every built-in layout.
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]RenderFn, len(layouts))}

	for name, l := range layouts {
		r.Register(name, l.render)
	}

	return r
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *Registry) Register(name string, fn RenderFn) {
	r.fns[normalizeName(name)] = fn
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.fns[normalizeName(name)]
	return ok
}

// Select returns the render function for name, or the baseline for anything
// unregistered, including the empty string. It never returns nil.
func (r *Registry) Select(name string) RenderFn {
	_, fn := r.Lookup(name)
	return fn
}

// Lookup is Select that also reports the effective template name.
func (r *Registry) Lookup(name string) (string, RenderFn) {
	key := normalizeName(name)
	if fn, ok := r.fns[key]; ok && fn != nil {
		return key, fn
	}

	if fn, ok := r.fns[Baseline]; ok && fn != nil {
		return Baseline, fn
	}

	return Baseline, layouts[Baseline].render
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
