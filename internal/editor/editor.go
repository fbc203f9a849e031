// Package editor реализует сессию редактирования одного заказа:
// загрузка, черновик с dirty-флагом, оптимистичное сохранение с откатом
// и удаление с обязательным подтверждением
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkorneev/orders-board/internal/model"
)

// State — состояние сессии редактирования
type State string

const (
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateLoadError State = "load-error"
	StateSaving    State = "saving"
	StateDeleting  State = "deleting"
	StateDeleted   State = "deleted"
)

// ErrNotReady возвращается, когда операция недопустима в текущем
// состоянии сессии
var ErrNotReady = errors.New("editor session is not ready")

// ErrDeleteNotConfirmed возвращается при попытке удаления без
// предварительного подтверждения
var ErrDeleteNotConfirmed = errors.New("delete was not confirmed")

// OrderStore определяет контракт стора, через который сессия читает
// и записывает заказ
type OrderStore interface {
	GetByID(ctx context.Context, id string) (model.Order, error)
	Update(ctx context.Context, id string, order model.Order) (model.Order, error)
	Delete(ctx context.Context, id string) error
}

// Session — сессия редактирования одного заказа
//
// Сессия принадлежит ровно одному владельцу и не синхронизирована:
// черновик и снимок для отката никогда не видны за её пределами
type Session struct {
	store OrderStore
	log   *slog.Logger

	id      string
	state   State
	loadErr string // сообщение для пользователя при ошибке загрузки

	// order — авторитетное (отображаемое) состояние заказа,
	// draft — редактируемая копия
	order model.Order
	draft model.Order
	dirty bool

	deletePending bool
}

// NewSession создаёт сессию для заказа с заданным ID
// до вызова Load сессия находится в состоянии loading
func NewSession(store OrderStore, id string, log *slog.Logger) *Session {
	return &Session{
		store: store,
		log:   log,
		id:    id,
		state: StateLoading,
	}
}

// Load загружает заказ; при ошибке сессия переходит в load-error
// с сообщением для пользователя, повторной попытки не делается
func (s *Session) Load(ctx context.Context) error {
	const op = "editor.Session.Load"

	s.state = StateLoading
	s.loadErr = ""

	order, err := s.store.GetByID(ctx, s.id)
	if err != nil {
		s.state = StateLoadError
		s.loadErr = "Не удалось загрузить заказ"
		s.log.Error("failed to load order",
			slog.String("order_id", s.id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.order = order
	s.draft = order.Clone()
	s.dirty = false
	s.state = StateReady

	return nil
}

// State возвращает текущее состояние сессии
func (s *Session) State() State { return s.state }

// Dirty сообщает, есть ли несохранённые правки
func (s *Session) Dirty() bool { return s.dirty }

// LoadError возвращает сообщение об ошибке загрузки для пользователя
func (s *Session) LoadError() string { return s.loadErr }

// Order возвращает отображаемое (авторитетное) состояние заказа
func (s *Session) Order() model.Order { return s.order.Clone() }

// Draft возвращает текущий черновик
func (s *Session) Draft() model.Order { return s.draft.Clone() }

// DraftTotal возвращает сумму черновика, пересчитанную по позициям
func (s *Session) DraftTotal() float64 { return s.draft.ItemsTotal() }

// SetCustomerName изменяет имя клиента в черновике
func (s *Session) SetCustomerName(name string) {
	s.draft.CustomerName = name
	s.markDirty()
}

// SetStatus изменяет статус заказа в черновике
func (s *Session) SetStatus(status model.OrderStatus) {
	s.draft.Status = status
	s.markDirty()
}

// SetItem заменяет позицию по индексу; несуществующий индекс игнорируется
func (s *Session) SetItem(index int, item model.OrderItem) {
	if index < 0 || index >= len(s.draft.Items) {
		return
	}
	s.draft.Items[index] = item
	s.markDirty()
}

// AddItem добавляет новую позицию с плейсхолдерными значениями
func (s *Session) AddItem() {
	s.draft.Items = append(s.draft.Items, model.OrderItem{
		ProductID:   0,
		ProductName: "",
		Qty:         1,
		Price:       0,
	})
	s.markDirty()
}

// RemoveItem удаляет позицию по индексу, коллекция немедленно
// уплотняется; несуществующий индекс игнорируется
func (s *Session) RemoveItem(index int) {
	if index < 0 || index >= len(s.draft.Items) {
		return
	}
	s.draft.Items = append(s.draft.Items[:index], s.draft.Items[index+1:]...)
	s.markDirty()
}

// ApplyPatch переносит в черновик все редактируемые поля заказа разом
// используется HTTP-слоем, где правки приходят одним документом
func (s *Session) ApplyPatch(patch model.Order) {
	s.draft.CustomerName = patch.CustomerName
	s.draft.Status = patch.Status
	s.draft.Items = append([]model.OrderItem(nil), patch.Items...)
	s.markDirty()
}

// Validate прогоняет правила валидации по текущему черновику
func (s *Session) Validate() Violations {
	return ValidateDraft(s.draft)
}

// Save сохраняет черновик по оптимистичному протоколу:
//  1. валидация всего черновика; при нарушениях запрос в сеть не уходит
//  2. отображаемый заказ заменяется черновиком с пересчитанной суммой,
//     снимок прежнего состояния сохраняется значением
//  3. при успехе авторитетным становится ответ сервера, dirty снимается
//  4. при ошибке снимок восстанавливается в точности, dirty остаётся —
//     пользователь может повторить попытку
func (s *Session) Save(ctx context.Context) error {
	const op = "editor.Session.Save"

	if s.state != StateReady {
		return fmt.Errorf("%s: %w", op, ErrNotReady)
	}

	if violations := s.Validate(); violations != nil {
		s.log.Debug("draft failed validation",
			slog.String("order_id", s.id),
			slog.Int("invalid_fields", len(violations)),
		)
		return violations
	}

	updated := s.draft.Clone()
	updated.Total = updated.ItemsTotal()

	snapshot := s.order.Clone()
	s.order = updated
	s.state = StateSaving

	saved, err := s.store.Update(ctx, s.id, updated)
	if err != nil {
		// откат: снимок восстанавливается в точности, правки остаются
		s.order = snapshot
		s.state = StateReady
		s.log.Warn("save failed, rolled back to snapshot",
			slog.String("order_id", s.id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	// сервер — источник правды: его версия вытесняет оптимистичную
	s.order = saved
	s.draft = saved.Clone()
	s.dirty = false
	s.state = StateReady

	return nil
}

// RequestDelete взводит ожидание подтверждения удаления
func (s *Session) RequestDelete() {
	if s.state == StateReady {
		s.deletePending = true
	}
}

// CancelDelete снимает ожидание подтверждения
func (s *Session) CancelDelete() {
	s.deletePending = false
}

// DeletePending сообщает, ждёт ли сессия подтверждения удаления
func (s *Session) DeletePending() bool { return s.deletePending }

// ConfirmDelete выполняет удаление после явного подтверждения
// при успехе сессия переходит в deleted (уход со страницы),
// при ошибке остаётся в ready
func (s *Session) ConfirmDelete(ctx context.Context) error {
	const op = "editor.Session.ConfirmDelete"

	if s.state != StateReady {
		return fmt.Errorf("%s: %w", op, ErrNotReady)
	}
	if !s.deletePending {
		return fmt.Errorf("%s: %w", op, ErrDeleteNotConfirmed)
	}

	s.state = StateDeleting
	s.deletePending = false

	if err := s.store.Delete(ctx, s.id); err != nil {
		s.state = StateReady
		s.log.Warn("delete failed",
			slog.String("order_id", s.id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.state = StateDeleted
	return nil
}

func (s *Session) markDirty() {
	if s.state == StateReady {
		s.dirty = true
	}
}
