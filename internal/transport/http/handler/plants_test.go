package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/plant-catalog-api/internal/application/plant"
	"github.com/plant-catalog-api/internal/domain"
	jwtinfra "github.com/plant-catalog-api/internal/infrastructure/jwt"
	"github.com/plant-catalog-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockPlantSvc struct{ mock.Mock }

func (m *mockPlantSvc) Get(ctx context.Context, plantID string) (domain.Plant, error) {
	args := m.Called(ctx, plantID)
	p, _ := args.Get(0).(domain.Plant)
	return p, args.Error(1)
}

func (m *mockPlantSvc) Save(ctx context.Context, email, plantID string) error {
	return m.Called(ctx, email, plantID).Error(0)
}

func (m *mockPlantSvc) ListSaved(ctx context.Context, email string) ([]domain.Plant, error) {
	args := m.Called(ctx, email)
	p, _ := args.Get(0).([]domain.Plant)
	return p, args.Error(1)
}

// --- helpers ---

// withURLParam injects a chi URL param into the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withSession attaches claims the way the session middleware does.
func withSession(r *http.Request, email string) *http.Request {
	claims := &jwtinfra.Claims{Email: email}
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, claims))
}

func saveBody(id string) *bytes.Reader {
	body, _ := json.Marshal(domain.SavePlantRequest{ID: id})
	return bytes.NewReader(body)
}

// --- Get tests ---

func TestGetPlant_NotFound(t *testing.T) {
	svc := &mockPlantSvc{}
	svc.On("Get", mock.Anything, "nope").Return(nil, plant.ErrPlantNotFound)
	h := NewPlantHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/Tanaman/nope", nil), "id", "nope"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Plant not found", decodeEnvelope(t, rr).Error)
}

func TestGetPlant_Failure(t *testing.T) {
	svc := &mockPlantSvc{}
	svc.On("Get", mock.Anything, "p1").Return(nil, errors.New("boom"))
	h := NewPlantHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/Tanaman/p1", nil), "id", "p1"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Something went wrong", decodeEnvelope(t, rr).Error)
}

func TestGetPlant_HappyPath(t *testing.T) {
	svc := &mockPlantSvc{}
	svc.On("Get", mock.Anything, "p1").Return(domain.Plant{"plant_id": "p1", "name": "Aloe vera"}, nil)
	h := NewPlantHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/Tanaman/p1", nil), "id", "p1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Aloe vera", resp.Data["name"])
}

// --- Save tests ---

func TestSavePlant_MissingClaims(t *testing.T) {
	h := NewPlantHandler(&mockPlantSvc{})
	rr := httptest.NewRecorder()
	h.Save(rr, httptest.NewRequest(http.MethodPost, "/savePlant", saveBody("p1")))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSavePlant_MissingID(t *testing.T) {
	svc := &mockPlantSvc{}
	h := NewPlantHandler(svc)
	rr := httptest.NewRecorder()
	h.Save(rr, withSession(httptest.NewRequest(http.MethodPost, "/savePlant", saveBody("")), "a@b.c"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestSavePlant_AlreadySaved(t *testing.T) {
	svc := &mockPlantSvc{}
	svc.On("Save", mock.Anything, "a@b.c", "p1").Return(plant.ErrAlreadySaved)
	h := NewPlantHandler(svc)
	rr := httptest.NewRecorder()
	h.Save(rr, withSession(httptest.NewRequest(http.MethodPost, "/savePlant", saveBody("p1")), "a@b.c"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Plant already saved", decodeEnvelope(t, rr).Error)
}

func TestSavePlant_HappyPath(t *testing.T) {
	svc := &mockPlantSvc{}
	svc.On("Save", mock.Anything, "a@b.c", "p1").Return(nil)
	h := NewPlantHandler(svc)
	rr := httptest.NewRecorder()
	h.Save(rr, withSession(httptest.NewRequest(http.MethodPost, "/savePlant", saveBody("p1")), "a@b.c"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Plant saved successfully", decodeEnvelope(t, rr).Message)
	svc.AssertExpectations(t)
}

// --- ListSaved tests ---

func TestListSaved_EmptyIsArray(t *testing.T) {
	svc := &mockPlantSvc{}
	svc.On("ListSaved", mock.Anything, "a@b.c").Return([]domain.Plant{}, nil)
	h := NewPlantHandler(svc)
	rr := httptest.NewRecorder()
	h.ListSaved(rr, withSession(httptest.NewRequest(http.MethodGet, "/savedPlants", nil), "a@b.c"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[]}`, rr.Body.String())
}

func TestListSaved_Failure(t *testing.T) {
	svc := &mockPlantSvc{}
	svc.On("ListSaved", mock.Anything, "a@b.c").Return(nil, errors.New("boom"))
	h := NewPlantHandler(svc)
	rr := httptest.NewRecorder()
	h.ListSaved(rr, withSession(httptest.NewRequest(http.MethodGet, "/savedPlants", nil), "a@b.c"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Something went wrong", decodeEnvelope(t, rr).Error)
}
