package document

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	appdocument "github.com/yamgooo/sri-client-go/internal/application/document"
	coredocument "github.com/yamgooo/sri-client-go/internal/core/document"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/config"
	httperrors "github.com/yamgooo/sri-client-go/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the document submission service.
type Handler struct {
	service *appdocument.Service
	log     *slog.Logger
}

// NewHandler creates a new document HTTP handler.
func NewHandler(service *appdocument.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type validateRequest struct {
	// SignedXML carries the signed document, base64-encoded in transit.
	SignedXML   []byte `json:"signedXml"`
	Environment string `json:"environment"`
}

type authorizeRequest struct {
	AccessKey   string `json:"accessKey"`
	Environment string `json:"environment"`
}

// Validate handles POST /documents/validate requests.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "invalid request body", []string{err.Error()}, h.log)
		return
	}
	if len(req.SignedXML) == 0 {
		httperrors.WriteError(w, http.StatusBadRequest, "invalid request body", []string{"signedXml is required"}, h.log)
		return
	}

	env, ok := parseEnvironment(req.Environment)
	if !ok {
		httperrors.WriteError(w, http.StatusBadRequest, "invalid request body", []string{"environment must be PRUEBAS or PRODUCCION"}, h.log)
		return
	}

	res := h.service.ValidateDocument(r.Context(), req.SignedXML, env)
	httperrors.WriteJSON(w, http.StatusOK, res, h.log)
}

// Authorize handles POST /documents/authorize requests.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "invalid request body", []string{err.Error()}, h.log)
		return
	}
	if strings.TrimSpace(req.AccessKey) == "" {
		httperrors.WriteError(w, http.StatusBadRequest, "invalid request body", []string{"accessKey is required"}, h.log)
		return
	}

	env, ok := parseEnvironment(req.Environment)
	if !ok {
		httperrors.WriteError(w, http.StatusBadRequest, "invalid request body", []string{"environment must be PRUEBAS or PRODUCCION"}, h.log)
		return
	}

	res := h.service.RequestAuthorization(r.Context(), req.AccessKey, env)
	httperrors.WriteJSON(w, http.StatusOK, res, h.log)
}

// GetConfiguration handles GET /documents/config requests.
func (h *Handler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteJSON(w, http.StatusOK, h.service.Configuration(), h.log)
}

// UpdateConfiguration handles PUT /documents/config requests. The new policy
// applies to future submissions only.
func (h *Handler) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	var cfg config.ServiceConfiguration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "invalid request body", []string{err.Error()}, h.log)
		return
	}

	if err := h.service.UpdateConfiguration(cfg); err != nil {
		httperrors.WriteError(w, http.StatusBadRequest, "invalid service configuration", []string{err.Error()}, h.log)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, h.service.Configuration(), h.log)
}

// parseEnvironment maps the wire value to an Environment. An empty value
// defaults to the certification environment.
func parseEnvironment(value string) (coredocument.Environment, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "PRUEBAS":
		return coredocument.Test, true
	case "PRODUCCION":
		return coredocument.Production, true
	default:
		return 0, false
	}
}
