package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cart_service/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type nopSink struct{}

func (nopSink) Debugf(string, ...any) {}
func (nopSink) Infof(string, ...any)  {}
func (nopSink) Warnf(string, ...any)  {}
func (nopSink) Errorf(string, ...any) {}

type envelope struct {
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
	ElapsedMs int64           `json:"elapsedMs"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *sales.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	svc := sales.NewService(sales.NewLocalStorage(), nopSink{})
	InitRoutes(router, svc, zaptest.NewLogger(t))
	return router, svc
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "every response must carry the envelope")
	return w, env
}

func TestCreateSale_Success(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := do(t, router, http.MethodPost, "/sales", map[string]any{"client_id": "c1"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, env.Error)
	assert.NotEmpty(t, env.Message)
	assert.NotEmpty(t, env.Timestamp)

	var sale sales.Sale
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	assert.NotEmpty(t, sale.ID)
	assert.Equal(t, "c1", sale.ClientID)
	assert.Equal(t, sales.StatusStarted, sale.Status)
}

func TestCreateSale_ValidationError(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := do(t, router, http.MethodPost, "/sales", map[string]any{"client_id": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ValidationError", env.Error)
	assert.NotEmpty(t, env.Message)
}

func TestCreateSale_MalformedJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/sales", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "ValidationError", env.Error)
}

func TestAddItem_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := do(t, router, http.MethodPost, "/sales/missing/items", map[string]any{"product_id": "p1", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", env.Error)
}

func TestAddItem_BusinessRule(t *testing.T) {
	router, svc := newTestRouter(t)

	sale, err := svc.CreateSale("c1", nil)
	require.NoError(t, err)
	require.NoError(t, svc.CancelSale(sale.ID))

	w, env := do(t, router, http.MethodPost, "/sales/"+sale.ID+"/items", map[string]any{"product_id": "p1", "quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "BusinessRule", env.Error)
}

func TestUpdateItemQuantity_Validation(t *testing.T) {
	router, svc := newTestRouter(t)

	sale, err := svc.CreateSale("c1", nil)
	require.NoError(t, err)
	item, err := svc.AddItem(sale.ID, "p1", 2)
	require.NoError(t, err)

	w, env := do(t, router, http.MethodPut, "/sales/items/"+item.ID, map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ValidationError", env.Error)
}

func TestCancelSale_Flow(t *testing.T) {
	router, svc := newTestRouter(t)

	sale, err := svc.CreateSale("c1", nil)
	require.NoError(t, err)

	w, env := do(t, router, http.MethodPut, "/sales/"+sale.ID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.Error)

	// idempotent: canceling again still succeeds
	w, env = do(t, router, http.MethodPut, "/sales/"+sale.ID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.Error)
}

func TestGetSale_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := do(t, router, http.MethodGet, "/sales/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", env.Error)
}

func TestGetSalesByStatus_InvalidToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := do(t, router, http.MethodGet, "/sales/status/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ValidationError", env.Error)
}

func TestGetSalesByProduct_EmptyResult(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := do(t, router, http.MethodGet, "/sales/product/px", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.Error)

	var result []*sales.Sale
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Empty(t, result)
}
