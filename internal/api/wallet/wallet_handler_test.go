package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"digitalwill-backend/internal/service/wallet"
	"digitalwill-backend/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWalletService struct {
	connectErr   error
	disconnected []string
}

func (f *fakeWalletService) Connect(_ context.Context, req *types.WalletConnectRequest) (*types.WalletConnectResponse, error) {
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return &types.WalletConnectResponse{
		AccessToken: "good",
		SessionID:   "s1",
		Address:     "0xa1",
		CanSign:     req.Account != "",
		Variant:     "create",
	}, nil
}

func (f *fakeWalletService) Disconnect(_ context.Context, sessionID string) error {
	f.disconnected = append(f.disconnected, sessionID)
	return nil
}

func (f *fakeWalletService) GetSession(string) (*wallet.Session, error) {
	return nil, wallet.ErrSessionNotFound
}

func (f *fakeWalletService) Summary(_ context.Context, sessionID string) (*types.WalletSummary, error) {
	return &types.WalletSummary{Address: "0xa1", Balance: "1.0000 APT"}, nil
}

func (f *fakeWalletService) VerifyToken(token string) (*types.JWTClaims, error) {
	if token != "good" {
		return nil, wallet.ErrSessionNotFound
	}
	return &types.JWTClaims{SessionID: "s1", UserID: 1, WalletAddress: "0xa1"}, nil
}

func (f *fakeWalletService) SetSessionListener(wallet.SessionListener) {}
func (f *fakeWalletService) CloseAll()                                 {}

func setupRouter(svc wallet.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r *gin.Engine, method, path, body, token string) (*httptest.ResponseRecorder, types.APIResponse) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp types.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestConnect(t *testing.T) {
	r := setupRouter(&fakeWalletService{})

	w, resp := do(r, http.MethodPost, "/api/v1/wallet/connect", `{"account":"alice"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "s1", data["session_id"])
	assert.Equal(t, true, data["can_sign"])
}

func TestConnect_StatusMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantErr  string
	}{
		{wallet.ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{wallet.ErrInvalidAddress, http.StatusBadRequest, "INVALID_WALLET_ADDRESS"},
		{wallet.ErrInvalidVariant, http.StatusBadRequest, "INVALID_VARIANT"},
		{wallet.ErrUnknownAccount, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.wantErr, func(t *testing.T) {
			r := setupRouter(&fakeWalletService{connectErr: tt.err})
			w, resp := do(r, http.MethodPost, "/api/v1/wallet/connect", `{}`, "")
			assert.Equal(t, tt.wantCode, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestDisconnectAndSummary(t *testing.T) {
	svc := &fakeWalletService{}
	r := setupRouter(svc)

	w, _ := do(r, http.MethodGet, "/api/v1/wallet/summary", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, resp := do(r, http.MethodGet, "/api/v1/wallet/summary", "", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, _ = do(r, http.MethodPost, "/api/v1/wallet/disconnect", "", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"s1"}, svc.disconnected)
}
