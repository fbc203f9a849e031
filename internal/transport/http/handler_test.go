package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkorneev/orders-board/internal/api"
	"github.com/mkorneev/orders-board/internal/auth"
	"github.com/mkorneev/orders-board/internal/lib/logger"
	"github.com/mkorneev/orders-board/internal/model"
	"github.com/mkorneev/orders-board/internal/store"
)

// backendStub — дублёр REST-бэкенда заказов
type backendStub struct {
	mu          sync.Mutex
	orders      []model.Order
	failList    bool
	putCalls    int
	deleteCalls int
}

func (b *backendStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failList {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "backend exploded"}`))
			return
		}
		json.NewEncoder(w).Encode(b.orders)
	})

	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		for _, order := range b.orders {
			if order.ID == r.PathValue("id") {
				json.NewEncoder(w).Encode(order)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "order not found"}`))
	})

	mux.HandleFunc("PUT /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.putCalls++
		var order model.Order
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for i := range b.orders {
			if b.orders[i].ID == r.PathValue("id") {
				b.orders[i] = order
				json.NewEncoder(w).Encode(order)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("DELETE /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.deleteCalls++
		for i := range b.orders {
			if b.orders[i].ID == r.PathValue("id") {
				b.orders = append(b.orders[:i], b.orders[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	return mux
}

func fixtureOrders() []model.Order {
	return []model.Order{
		{
			ID: "1", Number: "ORD-001", CustomerName: "Иван Иванов",
			Status: model.StatusNew, Total: 100, CreatedAt: "2024-01-03T10:00:00Z",
			Items: []model.OrderItem{{ProductID: 1, ProductName: "Soap", Qty: 4, Price: 25}},
		},
		{
			ID: "2", Number: "ORD-002", CustomerName: "Петр Петров",
			Status: model.StatusProcessing, Total: 250, CreatedAt: "2024-01-01T10:00:00Z",
			Items: []model.OrderItem{{ProductID: 2, ProductName: "Towel", Qty: 5, Price: 50}},
		},
		{
			ID: "3", Number: "ORD-003", CustomerName: "Анна Сидорова",
			Status: model.StatusDelivered, Total: 80, CreatedAt: "2024-01-02T10:00:00Z",
			Items: []model.OrderItem{{ProductID: 3, ProductName: "Cup", Qty: 1, Price: 80}},
		},
	}
}

// setupApp поднимает дублёр бэкенда и собирает приложение поверх него —
// той же цепочкой, что и cmd/app
func setupApp(t *testing.T) (*Handler, *backendStub, *auth.Session) {
	t.Helper()

	stub := &backendStub{orders: fixtureOrders()}
	backendServer := httptest.NewServer(stub.handler())
	t.Cleanup(backendServer.Close)

	log := logger.Discard()
	session := auth.NewSession(auth.NewMemoryStorage(), log)

	client := api.NewClient(backendServer.URL, 2*time.Second, log)
	client.SetTokenProvider(session.Token)
	client.OnUnauthorized(session.Logout)

	orderStore := store.NewOrderStore(api.NewOrders(client), 0, log)
	session.OnLogout(orderStore.ClearCache)

	return NewHandler(orderStore, session, log), stub, session
}

func doJSON(t *testing.T, h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, h *Handler) {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/login", map[string]string{
		"email": "user@example.com", "password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listOrdersResponse {
	t.Helper()
	var resp listOrdersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOrdersRequireAuth(t *testing.T) {
	h, stub, _ := setupApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/orders"},
		{http.MethodGet, "/orders/1"},
		{http.MethodPut, "/orders/1"},
		{http.MethodDelete, "/orders/1"},
	} {
		w := doJSON(t, h, route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
	assert.Equal(t, 0, stub.putCalls)
	assert.Equal(t, 0, stub.deleteCalls)
}

func TestLoginFlow(t *testing.T) {
	h, _, session := setupApp(t)

	w := doJSON(t, h, http.MethodPost, "/login", map[string]string{"email": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	login(t, h)
	assert.True(t, session.IsLoggedIn())

	w = doJSON(t, h, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, session.IsLoggedIn())

	w = doJSON(t, h, http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListOrders_DefaultParams(t *testing.T) {
	h, _, _ := setupApp(t)
	login(t, h)

	w := doJSON(t, h, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeList(t, w)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Orders, 3)
	// сортировка по умолчанию: createdAt desc
	assert.Equal(t, "1", resp.Orders[0].ID)
	assert.Equal(t, "3", resp.Orders[1].ID)
	assert.Equal(t, "2", resp.Orders[2].ID)
	// все параметры дефолтные: каноническая строка запроса пуста
	assert.Equal(t, "", resp.Query)
}

func TestListOrders_StatusAndSearch(t *testing.T) {
	h, _, _ := setupApp(t)
	login(t, h)

	w := doJSON(t, h, http.MethodGet, "/orders?status=processing&search=Петр", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeList(t, w)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "2", resp.Orders[0].ID)
	assert.Equal(t, "Петр Петров", resp.Orders[0].CustomerName)
}

func TestListOrders_PaginationAndForeignKeysInQueryEcho(t *testing.T) {
	h, _, _ := setupApp(t)
	login(t, h)

	w := doJSON(t, h, http.MethodGet, "/orders?pageSize=2&page=2&utm_source=mail", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeList(t, w)
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Orders, 1)
	assert.Equal(t, 2, resp.Page)

	// посторонний ключ сохранён, дефолтные опущены
	assert.Contains(t, resp.Query, "utm_source=mail")
	assert.Contains(t, resp.Query, "pageSize=2")
	assert.NotContains(t, resp.Query, "sortBy")
	assert.NotContains(t, resp.Query, "status")
}

func TestListOrders_BackendFailure(t *testing.T) {
	h, stub, _ := setupApp(t)
	login(t, h)
	stub.failList = true

	w := doJSON(t, h, http.MethodGet, "/orders", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetOrder(t *testing.T) {
	h, _, _ := setupApp(t)
	login(t, h)

	w := doJSON(t, h, http.MethodGet, "/orders/2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var order model.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "Петр Петров", order.CustomerName)

	w = doJSON(t, h, http.MethodGet, "/orders/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveOrder_InvalidDraftNeverReachesBackend(t *testing.T) {
	h, stub, _ := setupApp(t)
	login(t, h)

	patch := model.Order{CustomerName: "A", Items: []model.OrderItem{}}
	w := doJSON(t, h, http.MethodPut, "/orders/1", patch)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp validationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "form is invalid", resp.Error)
	assert.Contains(t, resp.Violations, "items")

	assert.Equal(t, 0, stub.putCalls)
}

func TestSaveOrder_Success(t *testing.T) {
	h, stub, _ := setupApp(t)
	login(t, h)

	patch := model.Order{
		CustomerName: "Иван Иванович",
		Status:       model.StatusShipped,
		Items: []model.OrderItem{
			{ProductID: 1, ProductName: "Soap", Qty: 2, Price: 30},
		},
	}
	w := doJSON(t, h, http.MethodPut, "/orders/1", patch)

	require.Equal(t, http.StatusOK, w.Code)
	var resp saveOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Иван Иванович", resp.Order.CustomerName)
	assert.Equal(t, model.StatusShipped, resp.Order.Status)
	// сумма пересчитана по позициям
	assert.Equal(t, 60.0, resp.Order.Total)
	assert.Equal(t, 1, stub.putCalls)

	// незатронутые поля заказа сохранились
	assert.Equal(t, "ORD-001", resp.Order.Number)
}

func TestDeleteOrder(t *testing.T) {
	h, stub, _ := setupApp(t)
	login(t, h)

	w := doJSON(t, h, http.MethodDelete, "/orders/3", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, stub.deleteCalls)

	w = doJSON(t, h, http.MethodGet, "/orders/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrder_NotFound(t *testing.T) {
	h, _, _ := setupApp(t)
	login(t, h)

	// сессия редактирования не загрузится: удалять нечего
	w := doJSON(t, h, http.MethodDelete, "/orders/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
