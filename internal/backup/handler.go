package backup

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gstbill/gstbill/internal/platform/httpx"
)

// Handler serves GET /export and POST /import.
type Handler struct {
	logger  *slog.Logger
	service *Service
	maxBody int64
}

// NewHandler constructs the backup handler.
func NewHandler(logger *slog.Logger, service *Service, maxBody int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBody <= 0 {
		maxBody = httpx.DefaultMaxBodyBytes
	}
	return &Handler{logger: logger, service: service, maxBody: maxBody}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/export", h.export)
	r.Post("/import", h.importBackup)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	doc := h.service.Export(r.Context())
	name := FilePrefix + doc.ExportedAt.Format("2006-01-02") + ".json"
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) importBackup(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrBodyTooLarge, err))
		return
	}
	result, err := h.service.Import(r.Context(), raw)
	if err != nil {
		h.logger.Warn("import failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("backup imported", slog.Any("collections", result.Replaced))
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "replaced": result.Replaced})
}
