// Package auth реализует мок-сессию авторизации: любые учётные данные
// принимаются, токен подделывается локально
// ядро приложения зависит только от булева состояния «вошёл / не вошёл»,
// формат токена нигде не разбирается
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrEmptyEmail возвращается при попытке входа без email
var ErrEmptyEmail = errors.New("email is required")

// TokenStorage определяет контракт хранилища токена
// (аналог localStorage в браузере)
type TokenStorage interface {
	Get() string
	Set(token string)
	Clear()
}

// MemoryStorage — потокобезопасное in-memory хранилище токена
type MemoryStorage struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStorage создаёт пустое хранилище
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStorage) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryStorage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Session управляет состоянием входа пользователя
type Session struct {
	storage TokenStorage
	log     *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	onLogout []func()
}

// NewSession создаёт новый экземпляр сессии
func NewSession(storage TokenStorage, log *slog.Logger) *Session {
	return &Session{
		storage: storage,
		log:     log,
		now:     time.Now,
	}
}

// Login принимает любые учётные данные и подделывает токен
// пароль не проверяется вовсе
func (s *Session) Login(email, _ string) (string, error) {
	const op = "auth.Session.Login"

	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyEmail)
	}

	token := base64.StdEncoding.EncodeToString(
		fmt.Appendf(nil, "%s:%d", email, s.now().UnixMilli()),
	)
	s.storage.Set(token)
	s.log.Info("user logged in", slog.String("email", email))

	return token, nil
}

// Logout очищает токен и уведомляет подписчиков
// (сброс кэша заказов, редирект на страницу входа)
func (s *Session) Logout() {
	s.storage.Clear()
	s.log.Info("user logged out")

	s.mu.Lock()
	hooks := make([]func(), len(s.onLogout))
	copy(hooks, s.onLogout)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// OnLogout регистрирует хук, вызываемый при завершении сессии
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, fn)
}

// IsLoggedIn сообщает, есть ли активная сессия
func (s *Session) IsLoggedIn() bool {
	return s.storage.Get() != ""
}

// Token возвращает текущий токен (пустая строка — сессии нет)
func (s *Session) Token() string {
	return s.storage.Get()
}
