package taxpayer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apptaxpayer "github.com/yamgooo/sri-client-go/internal/application/taxpayer"
	httperrors "github.com/yamgooo/sri-client-go/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the taxpayer lookup service.
type Handler struct {
	service *apptaxpayer.Service
}

// NewHandler creates a new taxpayer HTTP handler.
func NewHandler(service *apptaxpayer.Service) *Handler {
	return &Handler{service: service}
}

// GetByRUC handles GET /taxpayers/ruc/{ruc} requests. The result envelope is
// returned verbatim; the HTTP status mirrors the envelope status.
func (h *Handler) GetByRUC(w http.ResponseWriter, r *http.Request) {
	ruc := chi.URLParam(r, "ruc")

	res := h.service.GetByRUC(r.Context(), ruc)
	httperrors.WriteJSON(w, res.Status.HTTPStatus(), res, nil)
}

// GetByCedula handles GET /taxpayers/cedula/{cedula} requests.
func (h *Handler) GetByCedula(w http.ResponseWriter, r *http.Request) {
	cedula := chi.URLParam(r, "cedula")

	res := h.service.GetByCedula(r.Context(), cedula)
	httperrors.WriteJSON(w, res.Status.HTTPStatus(), res, nil)
}
