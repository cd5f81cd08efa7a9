package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/location/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/location/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	uc := usecase.NewLocationUseCase(repository.NewMemoryRepository(), nil, logger.NewNop())
	r := gin.New()
	NewHTTPHandler(uc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHTTP_LocationLifecycle(t *testing.T) {
	r := setupRouter()

	w := do(r, http.MethodPost, "/api/v1/locations", map[string]any{"name": "Main", "code": "WH", "type": "warehouse"})
	require.Equal(t, http.StatusCreated, w.Code)
	var loc model.Location
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loc))

	w = do(r, http.MethodPost, "/api/v1/locations", map[string]any{"name": "Dup", "code": "WH", "type": "warehouse"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"DUPLICATE_KEY"`)

	w = do(r, http.MethodGet, "/api/v1/locations?type=warehouse", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = do(r, http.MethodPut, "/api/v1/locations/"+loc.ID, map[string]any{"name": "Main 2", "code": "WH", "type": "store", "isActive": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Main 2"`)

	w = do(r, http.MethodDelete, "/api/v1/locations/"+loc.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/v1/locations/"+loc.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}

func TestHTTP_MalformedBody(t *testing.T) {
	r := setupRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestGRPC_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	h := NewLocationHandler(usecase.NewLocationUseCase(repository.NewMemoryRepository(), nil, logger.NewNop()), logger.NewNop())

	req, err := structpb.NewStruct(map[string]any{"name": "Kiosk", "code": "K1", "type": "kiosk"})
	require.NoError(t, err)
	resp, err := h.CreateLocation(ctx, req)
	require.NoError(t, err)
	id := resp.Fields["location"].GetStructValue().Fields["id"].GetStringValue()
	require.NotEmpty(t, id)

	get, _ := structpb.NewStruct(map[string]any{"id": id})
	resp, err = h.GetLocation(ctx, get)
	require.NoError(t, err)
	assert.Equal(t, "K1", resp.Fields["location"].GetStructValue().Fields["code"].GetStringValue())

	bad, _ := structpb.NewStruct(map[string]any{"name": "x", "code": "K2", "type": "moon"})
	_, err = h.CreateLocation(ctx, bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
