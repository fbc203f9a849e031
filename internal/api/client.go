package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client — JSON-клиент REST-бэкенда заказов
// все остальные компоненты ходят в сеть только через него
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger

	// tokenProvider возвращает текущий токен сессии, пустая строка — нет сессии
	tokenProvider func() string
	// onUnauthorized вызывается при любом ответе 401 до возврата ошибки
	onUnauthorized func()
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// SetTokenProvider регистрирует поставщика токена авторизации
func (c *Client) SetTokenProvider(fn func() string) {
	c.tokenProvider = fn
}

// OnUnauthorized регистрирует хук, вызываемый при ответе 401
// сюда подключается завершение сессии
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// Get выполняет GET-запрос и декодирует JSON-ответ в out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Put выполняет PUT-запрос с JSON-телом и декодирует JSON-ответ в out
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete выполняет DELETE-запрос; тело ответа игнорируется
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	const op = "api.Client.do"

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request body: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenProvider != nil {
		if token := c.tokenProvider(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.log.With(
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
	)
	log.Debug("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, &NetworkError{Err: err})
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, log); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", op, err)
		}
	}

	return nil
}

// checkStatus превращает неуспешный HTTP-статус в типизированную ошибку
func (c *Client) checkStatus(resp *http.Response, log *slog.Logger) error {
	if resp.StatusCode < 400 {
		return nil
	}

	message := readErrorMessage(resp.Body)
	log.Warn("request returned error status",
		slog.Int("status", resp.StatusCode),
		slog.String("message", message),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	case resp.StatusCode >= 500:
		return &ServerError{Status: resp.StatusCode, Message: message}
	default:
		return &ClientError{Status: resp.StatusCode, Message: message}
	}
}

// readErrorMessage пытается достать поле error из JSON-тела ответа
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return string(data)
}
