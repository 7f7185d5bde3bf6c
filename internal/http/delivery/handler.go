package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/invoicer/internal/delivery"
	"github.com/MrJamesThe3rd/invoicer/internal/render"
	"github.com/MrJamesThe3rd/invoicer/internal/status"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

type Handler struct {
	transactions *transaction.Service
	orchestrator *delivery.Orchestrator
	defaultRole  string
}

func NewHandler(transactions *transaction.Service, orchestrator *delivery.Orchestrator, defaultRole string) *Handler {
	return &Handler{transactions: transactions, orchestrator: orchestrator, defaultRole: defaultRole}
}

// Routes mounts the per-transaction delivery endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}/document", h.document)
	r.Post("/{id}/deliveries", h.deliver)
}

func (h *Handler) TemplateRoutes(r chi.Router) {
	r.Get("/", h.templates)
}

type deliverRequest struct {
	Channel  delivery.Channel `json:"channel"`
	Phone    string           `json:"phone,omitempty"`
	Detailed bool             `json:"detailed,omitempty"`
	Role     string           `json:"role,omitempty"`
	Template string           `json:"template,omitempty"`
}

type deliverResponse struct {
	Attempt *delivery.Attempt `json:"attempt"`
	Notices []status.Notice   `json:"notices"`
}

func (h *Handler) deliver(w http.ResponseWriter, r *http.Request) {
	var req deliverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !req.Channel.Valid() {
		http.Error(w, "unknown channel", http.StatusBadRequest)
		return
	}

	tx, ok := h.load(w, r)
	if !ok {
		return
	}

	role := req.Role
	if role == "" {
		role = h.defaultRole
	}

	rec := &status.Recorder{}

	att, err := h.orchestrator.Deliver(status.WithNotifier(r.Context(), rec), delivery.Request{
		Channel:     req.Channel,
		Transaction: tx,
		Phone:       req.Phone,
		Detailed:    req.Detailed,
		Role:        role,
		Template:    req.Template,
	})
	if errors.Is(err, delivery.ErrInFlight) {
		http.Error(w, "a delivery for this transaction is already in progress", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode(err))

	if err := json.NewEncoder(w).Encode(deliverResponse{Attempt: att, Notices: rec.Notices()}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// document runs the download channel and streams the file as the response.
func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.load(w, r)
	if !ok {
		return
	}

	saver := &responseSaver{w: w}

	att, err := h.orchestrator.Deliver(r.Context(), delivery.Request{
		Channel:     delivery.ChannelDownload,
		Transaction: tx,
		Template:    r.URL.Query().Get("template"),
		Saver:       saver,
	})
	if err == nil || saver.written {
		return
	}

	if errors.Is(err, delivery.ErrInFlight) {
		http.Error(w, "a download for this transaction is already in progress", http.StatusConflict)
		return
	}

	http.Error(w, att.Message, statusCode(err))
}

func (h *Handler) templates(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(h.orchestrator.Templates()); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*transaction.Transaction, bool) {
	tx, err := h.transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "transaction not found", http.StatusNotFound)
			return nil, false
		}

		slog.Error("failed to get transaction", "error", err)
		http.Error(w, "failed to load transaction", http.StatusBadGateway)

		return nil, false
	}

	return tx, true
}

func statusCode(err error) int {
	switch delivery.KindOf(err) {
	case "":
		if err != nil {
			return http.StatusInternalServerError
		}

		return http.StatusOK
	case delivery.KindPreconditionFailed, delivery.KindUserCancelled:
		return http.StatusUnprocessableEntity
	case delivery.KindResolutionFailed, delivery.KindTransportFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// responseSaver writes the document straight into the HTTP response.
type responseSaver struct {
	w       http.ResponseWriter
	written bool
}

func (s *responseSaver) Save(_ context.Context, doc *render.Document) (string, error) {
	s.w.Header().Set("Content-Type", doc.ContentType)
	s.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	s.w.Header().Set("Content-Length", fmt.Sprint(len(doc.Data)))
	s.w.WriteHeader(http.StatusOK)
	s.written = true

	if _, err := s.w.Write(doc.Data); err != nil {
		return "", fmt.Errorf("writing response: %w", err)
	}

	return doc.FileName, nil
}
