package invoices

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gstbill/gstbill/internal/platform/httpx"
)

// Handler exposes invoices, the recycle bin, the number counter and the totals preview
// as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	maxBody int64
}

// NewHandler constructs the invoice HTTP handler. maxBody <= 0 uses the httpx default.
func NewHandler(logger *slog.Logger, service *Service, maxBody int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, maxBody: maxBody}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.softDelete)
	})
	r.Route("/deleted-invoices", func(r chi.Router) {
		r.Get("/", h.listDeleted)
		r.Delete("/", h.purgeAll)
		r.Post("/{id}/restore", h.restore)
		r.Delete("/{id}", h.purge)
	})
	r.Get("/counter", h.counter)
	r.Put("/counter", h.commitCounter)
	r.Post("/totals", h.preview)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list := h.service.Store().Search(r.Context(), q.Get("q"))
	list = Filter(list, Criteria{
		Status:      q.Get("status"),
		PaymentMode: q.Get("paymentMode"),
		Customer:    q.Get("customer"),
		Year:        q.Get("year"),
		Month:       q.Get("month"),
	})
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Store().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var draft Draft
	if err := httpx.DecodeJSON(w, r, &draft, h.maxBody); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.Create(r.Context(), draft)
	if err != nil {
		h.logger.Warn("create invoice failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("invoice created", slog.String("id", inv.ID), slog.Int("number", inv.InvoiceNumber))
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch Patch
	if err := httpx.DecodeJSON(w, r, &patch, h.maxBody); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, ok, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.logger.Warn("update invoice failed", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.NotFound(w, "invoice "+id)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.respondFound(w, id, "invoice", func() (bool, error) {
		return h.service.SoftDelete(r.Context(), id)
	})
}

func (h *Handler) listDeleted(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Store().Deleted(r.Context()))
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.respondFound(w, id, "deleted invoice", func() (bool, error) {
		return h.service.Restore(r.Context(), id)
	})
}

func (h *Handler) purge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.respondFound(w, id, "deleted invoice", func() (bool, error) {
		return h.service.Purge(r.Context(), id)
	})
}

func (h *Handler) purgeAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.PurgeAll(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "purged": n})
}

func (h *Handler) counter(w http.ResponseWriter, r *http.Request) {
	alloc := h.service.Allocator()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"lastInvoiceNumber": alloc.Last(r.Context()),
		"next":              alloc.Peek(r.Context()),
		"policy":            alloc.Policy().Name(),
	})
}

func (h *Handler) commitCounter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LastInvoiceNumber int `json:"lastInvoiceNumber"`
	}
	if err := httpx.DecodeJSON(w, r, &body, h.maxBody); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.CommitNumber(r.Context(), body.LastInvoiceNumber); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "lastInvoiceNumber": body.LastInvoiceNumber})
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var in PreviewInput
	if err := httpx.DecodeJSON(w, r, &in, h.maxBody); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := ComputePreview(in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) respondFound(w http.ResponseWriter, id, what string, op func() (bool, error)) {
	ok, err := op()
	if err != nil {
		h.logger.Warn(what+" operation failed", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !ok {
		httpx.NotFound(w, what+" "+id)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
