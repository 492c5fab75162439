package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/plant-catalog-api/internal/application/plant"
	"github.com/plant-catalog-api/internal/domain"
	"github.com/plant-catalog-api/internal/pkg/validate"
	"github.com/plant-catalog-api/internal/transport/http/middleware"
)

const msgSomethingWrong = "Something went wrong"

// PlantHandler serves catalog lookups and saved-plant bookmarks.
type PlantHandler struct {
	svc plant.Service
}

func NewPlantHandler(svc plant.Service) *PlantHandler { return &PlantHandler{svc: svc} }

func (h *PlantHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, DataEnvelope{Data: p})
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Plant not found")
	default:
		slog.ErrorContext(r.Context(), "get plant failed", "err", err)
		writeError(w, http.StatusInternalServerError, msgSomethingWrong)
	}
}

func (h *PlantHandler) Save(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req domain.SavePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.svc.Save(r.Context(), claims.Email, req.ID)
	switch {
	case err == nil:
		writeMessage(w, "Plant saved successfully")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, "Plant already saved")
	default:
		slog.ErrorContext(r.Context(), "save plant failed", "err", err)
		writeError(w, http.StatusInternalServerError, msgSomethingWrong)
	}
}

func (h *PlantHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	plants, err := h.svc.ListSaved(r.Context(), claims.Email)
	if err != nil {
		slog.ErrorContext(r.Context(), "list saved plants failed", "err", err)
		writeError(w, http.StatusInternalServerError, msgSomethingWrong)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: plants})
}
