// Package delivery renders a transaction's document and hands it to one of the
// delivery channels.
package delivery

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicer/internal/render"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

type Channel string

const (
	ChannelDownload Channel = "download"
	ChannelPrint    Channel = "print"
	ChannelEmail    Channel = "email"
	ChannelChat     Channel = "chat"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelDownload, ChannelPrint, ChannelEmail, ChannelChat:
		return true
	}

	return false
}

// RoleCustomer is the end-customer role. It is told how to fix missing
// integrations itself instead of being sent to an administrator.
const RoleCustomer = "customer"

var (
	ErrInFlight                = errors.New("delivery already in progress")
	ErrUnknownChannel          = errors.New("unknown delivery channel")
	ErrNoTransaction           = errors.New("no transaction to deliver")
	ErrNotInvoiceable          = errors.New("transaction type cannot be invoiced")
	ErrMissingEmail            = errors.New("counterparty has no email address")
	ErrMissingPhone            = errors.New("counterparty has no phone number")
	ErrIntegrationNotConnected = errors.New("email integration not connected")
	ErrSendRejected            = errors.New("email provider rejected the message")
	ErrCancelled               = errors.New("cancelled by user")
	ErrPrintTimeout            = errors.New("print surface did not load in time")
)

type Kind string

const (
	KindPreconditionFailed Kind = "preconditionFailed"
	KindResolutionFailed   Kind = "resolutionFailed"
	KindRenderFailed       Kind = "renderFailed"
	KindTransportFailed    Kind = "transportFailed"
	KindUserCancelled      Kind = "userCancelled"
)

// Error is the single user-facing failure of an attempt. Message is safe to
// show; Err keeps the cause for errors.Is.
type Error struct {
	Kind    Kind
	Channel Channel
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", e.Channel, e.Kind, e.Message)
	}

	return fmt.Sprintf("%s: %s: %s: %v", e.Channel, e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, ch Channel, message string, err error) *Error {
	return &Error{Kind: kind, Channel: ch, Message: message, Err: err}
}

// KindOf returns the taxonomy kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return ""
}

type Request struct {
	Channel     Channel
	Transaction *transaction.Transaction
	// Phone overrides the counterparty phone for the chat channel.
	Phone    string
	Detailed bool
	Role     string
	// Template overrides the configured default template.
	Template string
	// Saver overrides the orchestrator's download saver for this request.
	Saver Saver
}

type State string

const (
	StateIdle         State = "idle"
	StatePrecondition State = "precondition"
	StateResolving    State = "resolving"
	StateRendering    State = "rendering"
	StateDelivering   State = "delivering"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Attempt is the state of one delivery call. It belongs to the caller that
// started it and is never shared between calls.
type Attempt struct {
	ID            uuid.UUID `json:"id"`
	Channel       Channel   `json:"channel"`
	TransactionID string    `json:"transactionId"`
	State         State     `json:"state"`
	History       []State   `json:"history"`
	Template      string    `json:"template,omitempty"`
	FileName      string    `json:"fileName,omitempty"`
	Location      string    `json:"location,omitempty"`
	Link          string    `json:"link,omitempty"`
	Message       string    `json:"message,omitempty"`
	ErrorKind     Kind      `json:"errorKind,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt,omitzero"`

	// Document is the rendered artifact, kept for callers that stream it.
	Document *render.Document `json:"-"`
}

func newAttempt(req Request, now time.Time) *Attempt {
	a := &Attempt{
		ID:        uuid.New(),
		Channel:   req.Channel,
		State:     StateIdle,
		History:   []State{StateIdle},
		StartedAt: now,
	}

	if req.Transaction != nil {
		a.TransactionID = req.Transaction.ID
	}

	return a
}

func (a *Attempt) advance(s State) {
	a.State = s
	a.History = append(a.History, s)
}
