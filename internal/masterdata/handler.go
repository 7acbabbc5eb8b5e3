package masterdata

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gstbill/gstbill/internal/platform/httpx"
)

// Handler exposes master data as JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	maxBody int64
}

// NewHandler constructs the master data handler.
func NewHandler(logger *slog.Logger, service *Service, maxBody int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, maxBody: maxBody}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/business", h.getBusiness)
	r.Put("/business", h.updateBusiness)

	s := h.service
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", listOf(s.Customers))
		r.Post("/", createOf(h, "customer", s.CreateCustomer))
		r.Put("/{id}", updateOf(h, "customer", s.UpdateCustomer))
		r.Delete("/{id}", deleteOf(h, "customer", s.DeleteCustomer))
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", listOf(s.Products))
		r.Post("/", createOf(h, "product", s.CreateProduct))
		r.Put("/{id}", updateOf(h, "product", s.UpdateProduct))
		r.Delete("/{id}", deleteOf(h, "product", s.DeleteProduct))
	})
	r.Route("/upi-accounts", func(r chi.Router) {
		r.Get("/", listOf(s.UpiAccounts))
		r.Post("/", createOf(h, "upi account", s.CreateUpiAccount))
		r.Put("/{id}", updateOf(h, "upi account", s.UpdateUpiAccount))
		r.Delete("/{id}", deleteOf(h, "upi account", s.DeleteUpiAccount))
	})
}

func (h *Handler) getBusiness(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Business(r.Context()))
}

func (h *Handler) updateBusiness(w http.ResponseWriter, r *http.Request) {
	var patch BusinessPatch
	if err := httpx.DecodeJSON(w, r, &patch, h.maxBody); err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.UpdateBusiness(r.Context(), patch)
	if err != nil {
		h.logger.Warn("update business failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func listOf[T any](list func(context.Context) []T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, list(r.Context()))
	}
}

func createOf[T any](h *Handler, what string, create func(context.Context, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := httpx.DecodeJSON(w, r, &in, h.maxBody); err != nil {
			httpx.RespondError(w, err)
			return
		}
		out, err := create(r.Context(), in)
		if err != nil {
			h.logger.Warn("create "+what+" failed", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, out)
	}
}

func updateOf[T, P any](h *Handler, what string, update func(context.Context, string, P) (T, bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var patch P
		if err := httpx.DecodeJSON(w, r, &patch, h.maxBody); err != nil {
			httpx.RespondError(w, err)
			return
		}
		out, ok, err := update(r.Context(), id, patch)
		if err != nil {
			h.logger.Warn("update "+what+" failed", slog.String("id", id), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if !ok {
			httpx.NotFound(w, what+" "+id)
			return
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

func deleteOf(h *Handler, what string, remove func(context.Context, string) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ok, err := remove(r.Context(), id)
		if err != nil {
			h.logger.Warn("delete "+what+" failed", slog.String("id", id), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if !ok {
			httpx.NotFound(w, what+" "+id)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
