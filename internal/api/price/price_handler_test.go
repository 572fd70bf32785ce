package price

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"digitalwill-backend/internal/service/price"
	"digitalwill-backend/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePriceService struct {
	snapshot *types.PriceSnapshot
	days     int
}

func (f *fakePriceService) Start(context.Context) error { return nil }
func (f *fakePriceService) Stop() error                 { return nil }

func (f *fakePriceService) GetSnapshot(context.Context) (*types.PriceSnapshot, error) {
	if f.snapshot == nil {
		return nil, price.ErrPriceUnavailable
	}
	return f.snapshot, nil
}

func (f *fakePriceService) GetPrice(ctx context.Context) (*types.PriceResponse, error) {
	s, err := f.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &types.PriceResponse{Snapshot: s, Display: price.Display(s)}, nil
}

func (f *fakePriceService) Refresh(ctx context.Context) (*types.PriceResponse, error) {
	return f.GetPrice(ctx)
}

func (f *fakePriceService) GetHistory(_ context.Context, days int) (*types.PriceHistoryResponse, error) {
	f.days = days
	if days < 0 || days > 365 {
		return nil, price.ErrInvalidDays
	}
	return &types.PriceHistoryResponse{CoinID: "aptos", Days: days}, nil
}

func setupRouter(svc price.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, method, path string) (*httptest.ResponseRecorder, types.APIResponse) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var resp types.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestGetPrice(t *testing.T) {
	svc := &fakePriceService{}
	r := setupRouter(svc)

	w, resp := get(r, http.MethodGet, "/api/v1/price/aptos")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PRICE_UNAVAILABLE", resp.Error.Code)

	svc.snapshot = &types.PriceSnapshot{CoinID: "aptos", CurrentPriceUSD: 8.5}
	w, resp = get(r, http.MethodGet, "/api/v1/price/aptos")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, _ = get(r, http.MethodPost, "/api/v1/price/aptos/refresh")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetHistory(t *testing.T) {
	svc := &fakePriceService{}
	r := setupRouter(svc)

	w, _ := get(r, http.MethodGet, "/api/v1/price/aptos/history?days=7")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, svc.days)

	w, _ = get(r, http.MethodGet, "/api/v1/price/aptos/history")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, svc.days)

	w, resp := get(r, http.MethodGet, "/api/v1/price/aptos/history?days=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARAMS", resp.Error.Code)

	w, resp = get(r, http.MethodGet, "/api/v1/price/aptos/history?days=400")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PARAMS", resp.Error.Code)
}
