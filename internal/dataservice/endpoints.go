package dataservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

func (c *Client) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := url.Values{}

	if filter.Type != nil {
		query.Set("type", string(*filter.Type))
	}

	if filter.StartDate != nil {
		query.Set("from", filter.StartDate.Format(time.DateOnly))
	}

	if filter.EndDate != nil {
		query.Set("to", filter.EndDate.Format(time.DateOnly))
	}

	var txs []*transaction.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", query, nil, &txs); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return txs, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	if err := c.get(ctx, entityPath("transactions", id), &tx); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return &tx, nil
}

func (c *Client) GetParty(ctx context.Context, id string) (*transaction.Counterparty, error) {
	var cp transaction.Counterparty
	if err := c.get(ctx, entityPath("parties", id), &cp); err != nil {
		return nil, fmt.Errorf("getting party: %w", err)
	}

	cp.Kind = transaction.KindCustomer

	return &cp, nil
}

func (c *Client) GetVendor(ctx context.Context, id string) (*transaction.Counterparty, error) {
	var cp transaction.Counterparty
	if err := c.get(ctx, entityPath("vendors", id), &cp); err != nil {
		return nil, fmt.Errorf("getting vendor: %w", err)
	}

	cp.Kind = transaction.KindVendor

	return &cp, nil
}

func (c *Client) GetCompany(ctx context.Context, id string) (*transaction.Company, error) {
	var co transaction.Company
	if err := c.get(ctx, entityPath("companies", id), &co); err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}

	return &co, nil
}

func (c *Client) GetClient(ctx context.Context, id string) (*transaction.Client, error) {
	var cl transaction.Client
	if err := c.get(ctx, entityPath("clients", id), &cl); err != nil {
		return nil, fmt.Errorf("getting client: %w", err)
	}

	return &cl, nil
}

func (c *Client) GetBankAccount(ctx context.Context, id string) (*transaction.BankAccount, error) {
	var b transaction.BankAccount
	if err := c.get(ctx, entityPath("bank-details", id), &b); err != nil {
		return nil, fmt.Errorf("getting bank details: %w", err)
	}

	return &b, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*transaction.Item, error) {
	var it transaction.Item
	if err := c.get(ctx, entityPath("products", id), &it); err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}

	return &it, nil
}

func (c *Client) GetService(ctx context.Context, id string) (*transaction.Item, error) {
	var it transaction.Item
	if err := c.get(ctx, entityPath("services", id), &it); err != nil {
		return nil, fmt.Errorf("getting service: %w", err)
	}

	return &it, nil
}

type defaultTemplateResponse struct {
	DefaultTemplate string `json:"defaultTemplate"`
}

// DefaultTemplate returns the template name configured by an administrator.
func (c *Client) DefaultTemplate(ctx context.Context) (string, error) {
	var resp defaultTemplateResponse
	if err := c.get(ctx, "/settings/default-template", &resp); err != nil {
		return "", fmt.Errorf("getting default template: %w", err)
	}

	return resp.DefaultTemplate, nil
}

type emailStatusResponse struct {
	Connected bool `json:"connected"`
}

// EmailConnected reports whether the sending account integration is connected.
func (c *Client) EmailConnected(ctx context.Context) (bool, error) {
	var resp emailStatusResponse
	if err := c.get(ctx, "/integrations/email/status", &resp); err != nil {
		return false, fmt.Errorf("getting email integration status: %w", err)
	}

	return resp.Connected, nil
}

type SendInvoiceRequest struct {
	To             string `json:"to"`
	Subject        string `json:"subject"`
	HTML           string `json:"html"`
	FileName       string `json:"fileName"`
	DocumentBase64 string `json:"documentBase64"`
	CompanyID      string `json:"companyId"`
	SendAs         string `json:"sendAs"`
}

// SendInvoiceResponse is the business outcome; a 200 can still carry OK == false.
type SendInvoiceResponse struct {
	OK      bool   `json:"ok"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Accepted reports whether the provider took the message.
func (r *SendInvoiceResponse) Accepted() bool {
	return r != nil && (r.OK || r.Success) && r.Error == ""
}

func (c *Client) SendInvoice(ctx context.Context, req SendInvoiceRequest) (*SendInvoiceResponse, error) {
	var resp SendInvoiceResponse
	if err := c.do(ctx, http.MethodPost, "/integrations/email/send-invoice", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("sending invoice email: %w", err)
	}

	return &resp, nil
}
