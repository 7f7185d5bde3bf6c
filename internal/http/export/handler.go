package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/invoicer/internal/export"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.download)
}

type exportRequest struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// download streams a zip with one PDF per invoiceable transaction in the
// period plus a summary.txt listing what was and was not exported.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		http.Error(w, "end_date is before start_date", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"invoices_%s.zip\"", h.now().Format("20060102")))

	zs := export.NewZipSaver(w)

	items, err := h.svc.Export(r.Context(), transaction.ListFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}, zs, nil)
	if err != nil && len(items) == 0 {
		// Nothing has been written yet, so a plain error still fits.
		slog.Error("export failed", "error", err)
		w.Header().Del("Content-Disposition")
		http.Error(w, "could not list transactions", http.StatusBadGateway)

		return
	}

	summary := export.Summary(items)
	if err != nil {
		summary += "export interrupted: " + err.Error() + "\n"
	}

	if err := zs.AddFile("summary.txt", []byte(summary)); err != nil {
		slog.Error("failed to write summary", "error", err)
	}

	if err := zs.Close(); err != nil {
		slog.Error("failed to finish zip", "error", err)
	}
}
