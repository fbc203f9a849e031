package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mkorneev/orders-board/internal/api"
	"github.com/mkorneev/orders-board/internal/editor"
	"github.com/mkorneev/orders-board/internal/filter"
	"github.com/mkorneev/orders-board/internal/model"
	"github.com/mkorneev/orders-board/internal/urlstate"
)

// OrderService определяет интерфейс стора заказов, нужный хэндлеру
// это позволяет хэндлеру не зависеть от конкретной реализации
type OrderService interface {
	Fetch(ctx context.Context, forceRefresh bool) ([]model.Order, error)
	GetByID(ctx context.Context, id string) (model.Order, error)
	Update(ctx context.Context, id string, order model.Order) (model.Order, error)
	Delete(ctx context.Context, id string) error
}

// AuthService определяет интерфейс сессии авторизации, нужный хэндлеру
type AuthService interface {
	Login(email, password string) (string, error)
	Logout()
	IsLoggedIn() bool
}

// Handler обрабатывает HTTP-запросы приложения
type Handler struct {
	orders OrderService
	auth   AuthService
	log    *slog.Logger
	mux    *http.ServeMux
}

// NewHandler создает новый экземпляр Handler
func NewHandler(orders OrderService, auth AuthService, log *slog.Logger) *Handler {
	h := &Handler{
		orders: orders,
		auth:   auth,
		log:    log,
		mux:    http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes регистрирует все эндпоинты
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("POST /login", h.login)
	h.mux.HandleFunc("POST /logout", h.logout)

	// список и карточка заказа доступны только при активной сессии
	h.mux.HandleFunc("GET /orders", h.requireAuth(h.listOrders))
	h.mux.HandleFunc("GET /orders/{id}", h.requireAuth(h.getOrder))
	h.mux.HandleFunc("PUT /orders/{id}", h.requireAuth(h.saveOrder))
	h.mux.HandleFunc("DELETE /orders/{id}", h.requireAuth(h.deleteOrder))
}

// requireAuth не пускает к маршруту без активной сессии
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.auth.IsLoggedIn() {
			h.respondError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		next(w, r)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	h.respondJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	h.auth.Logout()
	w.WriteHeader(http.StatusNoContent)
}

type listOrdersResponse struct {
	Orders []model.Order `json:"orders"`
	Total  int           `json:"total"`
	Page   int           `json:"page"`
	// Query — каноническая строка запроса для текущих фильтров:
	// ключи с дефолтными значениями опущены, посторонние сохранены
	Query string `json:"query"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := urlstate.FromQuery(query)
	forceRefresh := query.Get("refresh") == "1"

	page := 1
	if raw := query.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	orders, err := h.orders.Fetch(r.Context(), forceRefresh)
	if err != nil {
		// кэша ещё нет и бэкенд недоступен: отдаём состояние ошибки,
		// пользователь может повторить запрос
		h.respondAPIError(w, err)
		return
	}

	filtered := filter.Apply(orders, params.Search, params.Status, params.SortBy, params.SortOrder)
	pageOrders := filter.Paginate(filtered, page, params.PageSize)

	h.respondJSON(w, http.StatusOK, listOrdersResponse{
		Orders: pageOrders,
		Total:  len(filtered),
		Page:   page,
		Query:  params.MergeInto(query).Encode(),
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		h.respondAPIError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, order)
}

type saveOrderResponse struct {
	Order model.Order `json:"order"`
}

type validationResponse struct {
	Error      string            `json:"error"`
	Violations editor.Violations `json:"violations"`
}

func (h *Handler) saveOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch model.Order
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	session := editor.NewSession(h.orders, id, h.log)
	if err := session.Load(r.Context()); err != nil {
		h.respondAPIError(w, err)
		return
	}

	session.ApplyPatch(patch)

	if err := session.Save(r.Context()); err != nil {
		var violations editor.Violations
		if errors.As(err, &violations) {
			// невалидный черновик: запрос к бэкенду не выполнялся
			h.respondJSON(w, http.StatusUnprocessableEntity, validationResponse{
				Error:      "form is invalid",
				Violations: violations,
			})
			return
		}
		h.respondAPIError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, saveOrderResponse{Order: session.Order()})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	session := editor.NewSession(h.orders, id, h.log)
	if err := session.Load(r.Context()); err != nil {
		h.respondAPIError(w, err)
		return
	}

	// HTTP DELETE сам по себе и есть явное подтверждение
	session.RequestDelete()
	if err := session.ConfirmDelete(r.Context()); err != nil {
		h.respondAPIError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondAPIError отображает ошибку бэкенда в HTTP-статус приложения
func (h *Handler) respondAPIError(w http.ResponseWriter, err error) {
	var clientErr *api.ClientError
	var serverErr *api.ServerError
	var networkErr *api.NetworkError

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		h.respondError(w, http.StatusUnauthorized, "authorization required")
	case errors.As(err, &clientErr):
		message := clientErr.Message
		if message == "" {
			message = "request rejected by backend"
		}
		h.respondError(w, clientErr.Status, message)
	case errors.As(err, &serverErr):
		h.respondError(w, http.StatusBadGateway, "backend is unavailable, try again later")
	case errors.As(err, &networkErr):
		h.respondError(w, http.StatusBadGateway, "backend is unreachable, try again later")
	default:
		h.log.Error("internal server error", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
