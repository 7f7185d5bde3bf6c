package delivery

//go:generate mockgen -source=backend.go -destination=backend_mock.go -package=delivery

import (
	"context"

	"github.com/MrJamesThe3rd/invoicer/internal/dataservice"
)

// Backend is the part of the data service the orchestrator calls itself.
type Backend interface {
	DefaultTemplate(ctx context.Context) (string, error)
	EmailConnected(ctx context.Context) (bool, error)
	SendInvoice(ctx context.Context, req dataservice.SendInvoiceRequest) (*dataservice.SendInvoiceResponse, error)
}
