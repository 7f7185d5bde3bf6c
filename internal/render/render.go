// Package render turns a transaction and its resolved records into a document.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/MrJamesThe3rd/invoicer/internal/resolve"
	"github.com/MrJamesThe3rd/invoicer/internal/template"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

// ErrRenderFailed wraps every template failure. Callers must not retry it automatically.
var ErrRenderFailed = errors.New("render failed")

var tracer = otel.Tracer("github.com/MrJamesThe3rd/invoicer/internal/render")

// Document is the rendered artifact. It is produced fresh for every delivery.
type Document struct {
	Data          []byte
	FileName      string
	ContentType   string
	Template      string
	TransactionID string
}

type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

// Inputs arranges the resolved records in the order templates expect.
func Inputs(tx *transaction.Transaction, ents *resolve.Entities) template.Input {
	in := template.Input{
		Transaction:     tx,
		ShippingAddress: tx.ShippingAddress,
	}

	if ents == nil {
		return in
	}

	in.Company = ents.Company
	in.Counterparty = ents.Counterparty
	in.Bank = ents.Bank
	in.OwnerClient = ents.OwnerClient

	if ents.Items != nil {
		in.Items = ents.Items
	}

	return in
}

// Render invokes fn and normalizes whatever it returns into a Document.
func (r *Renderer) Render(
	ctx context.Context,
	name string,
	fn template.RenderFn,
	tx *transaction.Transaction,
	ents *resolve.Entities,
) (doc *Document, err error) {
	ctx, span := tracer.Start(ctx, "render.Render")
	defer span.End()

	span.SetAttributes(attribute.String("template", name), attribute.String("transaction.id", tx.ID))

	defer func() {
		if p := recover(); p != nil {
			doc = nil
			err = fmt.Errorf("%w: template %s panicked: %v", ErrRenderFailed, name, p)
		}

		if err != nil {
			span.RecordError(err)
		}
	}()

	if fn == nil {
		return nil, fmt.Errorf("%w: template %s is not registered", ErrRenderFailed, name)
	}

	out, err := fn(ctx, Inputs(tx, ents))
	if err != nil {
		return nil, fmt.Errorf("%w: template %s: %w", ErrRenderFailed, name, err)
	}

	data := out.Bytes

	if out.Builder != nil {
		data, err = out.Builder.Finalize()
		if err != nil {
			return nil, fmt.Errorf("%w: finalizing template %s: %w", ErrRenderFailed, name, err)
		}
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: template %s produced no document", ErrRenderFailed, name)
	}

	return &Document{
		Data:          data,
		FileName:      FileName(tx),
		ContentType:   "application/pdf",
		Template:      name,
		TransactionID: tx.ID,
	}, nil
}

// FileName derives the download name from the invoice number, falling back to
// the last six characters of the transaction id.
func FileName(tx *transaction.Transaction) string {
	prefix := "Invoice"
	if tx.Type == transaction.TypeProforma {
		prefix = "Proforma"
	}

	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, tx.DocumentNumber())

	return fmt.Sprintf("%s_%s.pdf", prefix, safe)
}
