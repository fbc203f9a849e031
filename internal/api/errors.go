package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized — ответ 401: сессия должна быть завершена
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError означает, что ответ от сервера не был получен вовсе
// (обрыв соединения, таймаут, DNS и т.п.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError — ответ с кодом 5xx
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d: %s", e.Status, e.Message)
}

// ClientError — ответ с кодом 4xx (кроме 401), включая not-found и forbidden
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: status %d: %s", e.Status, e.Message)
}

// IsNotFound сообщает, была ли ошибка ответом 404
func IsNotFound(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Status == http.StatusNotFound
}
