package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/invoicer/internal/render"
	"github.com/MrJamesThe3rd/invoicer/internal/resolve"
	"github.com/MrJamesThe3rd/invoicer/internal/status"
	"github.com/MrJamesThe3rd/invoicer/internal/template"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

var tracer = otel.Tracer("github.com/MrJamesThe3rd/invoicer/internal/delivery")

type Resolver interface {
	Resolve(ctx context.Context, tx *transaction.Transaction) (*resolve.Entities, error)
}

// handler is one channel's contribution to an attempt. ready runs after
// resolution and before rendering; deliver runs on the rendered document.
type handler interface {
	ready(ctx context.Context, j *job) error
	deliver(ctx context.Context, j *job) (string, error)
}

type job struct {
	req     Request
	tx      *transaction.Transaction
	ents    *resolve.Entities
	doc     *render.Document
	phone   string
	attempt *Attempt
}

func (j *job) counterparty() *transaction.Counterparty {
	if j.ents != nil && j.ents.Counterparty != nil {
		return j.ents.Counterparty
	}

	return j.tx.Counterparty.Value
}

func (j *job) saver(fallback Saver) Saver {
	if j.req.Saver != nil {
		return j.req.Saver
	}

	return fallback
}

type Options struct {
	Backend  Backend
	Resolver Resolver
	Registry *template.Registry
	Renderer *render.Renderer
	Reporter *status.Reporter
	Gate     *status.Gate

	Saver        Saver
	Surfaces     func() Surface
	PrintTimeout time.Duration
	Opener       Opener
	Prompt       PhonePrompt
	ChatHost     string
	SendAs       string
}

type Orchestrator struct {
	backend  Backend
	resolver Resolver
	registry *template.Registry
	renderer *render.Renderer
	reporter *status.Reporter
	gate     *status.Gate
	channels map[Channel]handler
	now      func() time.Time
}

func New(opts Options) *Orchestrator {
	if opts.Registry == nil {
		opts.Registry = template.NewRegistry()
	}

	if opts.Renderer == nil {
		opts.Renderer = render.New()
	}

	if opts.Reporter == nil {
		opts.Reporter = status.NewReporter(status.LogNotifier{})
	}

	if opts.Gate == nil {
		opts.Gate = status.NewGate()
	}

	if opts.Saver == nil {
		opts.Saver = NewFileSaver(afero.NewOsFs(), ".")
	}

	if opts.Surfaces == nil {
		opts.Surfaces = func() Surface { return NewSpoolSurface(afero.NewOsFs(), "lp") }
	}

	if opts.PrintTimeout <= 0 {
		opts.PrintTimeout = 30 * time.Second
	}

	if opts.Opener == nil {
		opts.Opener = BrowserOpener{}
	}

	if opts.ChatHost == "" {
		opts.ChatHost = "web.whatsapp.com"
	}

	return &Orchestrator{
		backend:  opts.Backend,
		resolver: opts.Resolver,
		registry: opts.Registry,
		renderer: opts.Renderer,
		reporter: opts.Reporter,
		gate:     opts.Gate,
		channels: map[Channel]handler{
			ChannelDownload: &downloadChannel{saver: opts.Saver},
			ChannelPrint:    &printChannel{surfaces: opts.Surfaces, timeout: opts.PrintTimeout},
			ChannelEmail:    &emailChannel{backend: opts.Backend, sendAs: opts.SendAs},
			ChannelChat: &chatChannel{
				saver:  opts.Saver,
				opener: opts.Opener,
				prompt: opts.Prompt,
				host:   opts.ChatHost,
			},
		},
		now: time.Now,
	}
}

func gateKey(ch Channel, txID string) string {
	return string(ch) + "/" + txID
}

// Busy reports whether a delivery of txID over ch is outstanding.
func (o *Orchestrator) Busy(ch Channel, txID string) bool {
	return o.gate.Busy(gateKey(ch, txID))
}

// Templates lists the registered template names.
func (o *Orchestrator) Templates() []string {
	return o.registry.Names()
}

// Deliver runs one attempt to completion. A call for a channel and
// transaction that already has an attempt outstanding returns ErrInFlight
// without doing anything else. Every other call ends in exactly one terminal
// notice; failures are returned as *Error.
func (o *Orchestrator) Deliver(ctx context.Context, req Request) (*Attempt, error) {
	att := newAttempt(req, o.now())

	release, ok := o.gate.Acquire(gateKey(req.Channel, att.TransactionID))
	if !ok {
		slog.DebugContext(ctx, "delivery already in flight", "channel", req.Channel, "transaction_id", att.TransactionID)
		return nil, ErrInFlight
	}
	defer release()

	ctx, span := tracer.Start(ctx, "delivery.Deliver", trace.WithAttributes(
		attribute.String("attempt.id", att.ID.String()),
		attribute.String("channel", string(req.Channel)),
		attribute.String("transaction.id", att.TransactionID),
	))
	defer span.End()

	err := o.run(ctx, att, req)
	o.finish(ctx, att, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(att.ErrorKind))

		return att, err
	}

	return att, nil
}

func (o *Orchestrator) step(ctx context.Context, att *Attempt, s State) {
	att.advance(s)
	trace.SpanFromContext(ctx).AddEvent(string(s))
	o.reporter.Progress(ctx, string(att.Channel), att.TransactionID, string(s))
}

func (o *Orchestrator) run(ctx context.Context, att *Attempt, req Request) error {
	ch := req.Channel
	o.step(ctx, att, StatePrecondition)

	h, ok := o.channels[ch]
	if !ok {
		return newError(KindPreconditionFailed, ch, fmt.Sprintf("Unknown delivery channel %q.", ch), ErrUnknownChannel)
	}

	tx := req.Transaction
	if tx == nil {
		return newError(KindPreconditionFailed, ch, "No transaction selected.", ErrNoTransaction)
	}

	if !tx.Type.Invoiceable() {
		msg := fmt.Sprintf("%s transactions cannot be sent as invoices.", cases.Title(language.English).String(string(tx.Type)))
		return newError(KindPreconditionFailed, ch, msg, ErrNotInvoiceable)
	}

	o.step(ctx, att, StateResolving)

	ents, err := o.resolver.Resolve(ctx, tx)
	if errors.Is(err, resolve.ErrCounterpartyMissing) {
		return newError(KindResolutionFailed, ch, "Counterparty information is missing for this invoice.", err)
	}

	if err != nil {
		return newError(KindResolutionFailed, ch, "Could not load the details needed for this invoice.", err)
	}

	j := &job{req: req, tx: tx, ents: ents, attempt: att}

	if err := h.ready(ctx, j); err != nil {
		return asError(KindPreconditionFailed, ch, err)
	}

	o.step(ctx, att, StateRendering)

	doc, err := o.render(ctx, j)
	if err != nil {
		return newError(KindRenderFailed, ch, "The invoice document could not be generated.", err)
	}

	j.doc = doc
	att.Document = doc
	att.Template = doc.Template
	att.FileName = doc.FileName

	o.step(ctx, att, StateDelivering)

	msg, err := h.deliver(ctx, j)
	if err != nil {
		return asError(KindTransportFailed, ch, err)
	}

	att.Message = msg

	return nil
}

// templateName picks the request override, then the account default, then
// the baseline when the default cannot be fetched.
func (o *Orchestrator) templateName(ctx context.Context, req Request) string {
	if req.Template != "" {
		return req.Template
	}

	if o.backend == nil {
		return template.Baseline
	}

	name, err := o.backend.DefaultTemplate(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch default template, using baseline", "error", err)
		return template.Baseline
	}

	return name
}

func (o *Orchestrator) render(ctx context.Context, j *job) (*render.Document, error) {
	requested := o.templateName(ctx, j.req)

	name, fn := o.registry.Lookup(requested)
	if requested != "" && !o.registry.Has(requested) {
		slog.WarnContext(ctx, "unknown template, using baseline", "template", requested)
	}

	return o.renderer.Render(ctx, name, fn, j.tx, j.ents)
}

func (o *Orchestrator) finish(ctx context.Context, att *Attempt, err error) {
	att.FinishedAt = o.now()
	ch := string(att.Channel)

	if err == nil {
		att.advance(StateDone)
		o.reporter.Success(ctx, ch, att.TransactionID, att.Message)
		slog.InfoContext(ctx, "invoice delivered",
			"channel", ch,
			"transaction_id", att.TransactionID,
			"template", att.Template,
			"attempt_id", att.ID,
		)

		return
	}

	att.advance(StateFailed)

	var e *Error
	if !errors.As(err, &e) {
		e = newError(KindTransportFailed, att.Channel, "Something went wrong.", err)
	}

	att.ErrorKind = e.Kind
	att.Message = e.Message

	if e.Kind == KindUserCancelled {
		o.reporter.Cancelled(ctx, ch, att.TransactionID, e.Message)
		return
	}

	slog.ErrorContext(ctx, "failed to deliver invoice",
		"channel", ch,
		"transaction_id", att.TransactionID,
		"kind", e.Kind,
		"error", err,
	)

	o.reporter.Failure(ctx, ch, att.TransactionID, failureTitle(att.Channel), e.Message, att.Channel == ChannelEmail)
}

func asError(kind Kind, ch Channel, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return newError(kind, ch, "Something went wrong.", err)
}

func failureTitle(ch Channel) string {
	switch ch {
	case ChannelDownload:
		return "Download failed"
	case ChannelPrint:
		return "Print failed"
	case ChannelEmail:
		return "Email not sent"
	case ChannelChat:
		return "Chat hand-off failed"
	}

	return "Delivery failed"
}
