package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkorneev/orders-board/internal/model"
)

// DefaultTTL — окно свежести кэша списка заказов
const DefaultTTL = 5 * time.Minute

// Backend определяет контракт для REST-бэкенда заказов
type Backend interface {
	List(ctx context.Context) ([]model.Order, error)
	Get(ctx context.Context, id string) (model.Order, error)
	Update(ctx context.Context, id string, order model.Order) (model.Order, error)
	Delete(ctx context.Context, id string) error
}

// OrderStore владеет кэшем списка заказов и является единственным
// компонентом, который его мутирует; все остальные получают только
// производные read-only представления
//
// Политика чтения — stale-while-revalidate: свежий кэш отдаётся сразу,
// устаревший отдаётся сразу с фоновым обновлением, и только при пустом
// кэше или принудительном обновлении выполняется синхронный запрос
type OrderStore struct {
	backend Backend
	log     *slog.Logger
	ttl     time.Duration
	now     func() time.Time // подменяется в тестах

	mu         sync.RWMutex
	cache      *CacheEntry
	loading    bool
	lastErr    error
	refreshing bool // фоновая ревалидация уже запланирована

	// монотонные номера запросов: завершившийся запрос не имеет права
	// затереть кэш, записанный более поздним запросом
	fetchSeq   uint64
	appliedSeq uint64

	bg sync.WaitGroup
}

// NewOrderStore создаёт новый экземпляр стора
// при ttl <= 0 используется DefaultTTL
func NewOrderStore(backend Backend, ttl time.Duration, log *slog.Logger) *OrderStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &OrderStore{
		backend: backend,
		log:     log,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Fetch возвращает список заказов согласно политике кэширования
// после первой успешной загрузки вызов никогда не блокируется на сети,
// кроме случаев forceRefresh
func (s *OrderStore) Fetch(ctx context.Context, forceRefresh bool) ([]model.Order, error) {
	s.mu.Lock()

	if !forceRefresh && s.cache != nil {
		if s.cache.fresh(s.now(), s.ttl) {
			data := model.CloneOrders(s.cache.Data)
			s.mu.Unlock()
			return data, nil
		}

		if s.cache.IsStale {
			// устаревшие данные отдаём сразу, обновление — в фоне
			// и ровно одно, сколько бы чтений ни пришло до его завершения
			if !s.refreshing {
				s.refreshing = true
				s.bg.Add(1)
				go s.backgroundRefresh(context.WithoutCancel(ctx))
			}
			data := model.CloneOrders(s.cache.Data)
			s.mu.Unlock()
			return data, nil
		}
	}

	s.mu.Unlock()
	return s.refresh(ctx)
}

// backgroundRefresh выполняет фоновую ревалидацию кэша
func (s *OrderStore) backgroundRefresh(ctx context.Context) {
	defer s.bg.Done()

	if _, err := s.refresh(ctx); err != nil {
		s.log.Warn("background refresh failed", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.refreshing = false
	s.mu.Unlock()
}

// refresh выполняет запрос к бэкенду и заменяет запись кэша целиком
func (s *OrderStore) refresh(ctx context.Context) ([]model.Order, error) {
	const op = "store.OrderStore.refresh"

	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	s.lastErr = nil
	s.mu.Unlock()

	orders, err := s.backend.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if seq <= s.appliedSeq {
		// более поздний запрос уже успел примениться: результат отдаём
		// вызывающему, но кэш не трогаем
		s.log.Debug("discarding out-of-order fetch result", slog.Uint64("seq", seq))
		if err != nil {
			return []model.Order{}, fmt.Errorf("%s: %w", op, err)
		}
		return model.CloneOrders(orders), nil
	}

	if err != nil {
		// ошибка фиксируется в наблюдаемом слоте, а вызывающий получает
		// пустую коллекцию вместо частичного результата
		s.lastErr = err
		s.log.Error("failed to fetch orders", slog.String("error", err.Error()))
		return []model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.appliedSeq = seq
	s.cache = &CacheEntry{
		Data:      model.CloneOrders(orders),
		Timestamp: s.now(),
		IsStale:   false,
	}
	s.log.Debug("orders cache refreshed", slog.Int("orders_count", len(orders)))

	return model.CloneOrders(orders), nil
}

// GetByID всегда выполняет прямой запрос к бэкенду, минуя кэш списка
// отдельного кэша для одиночных заказов нет
func (s *OrderStore) GetByID(ctx context.Context, id string) (model.Order, error) {
	const op = "store.OrderStore.GetByID"

	order, err := s.backend.Get(ctx, id)
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// Update отправляет изменённый заказ; при успехе кэш списка помечается
// устаревшим (не сбрасывается), чтобы следующее чтение запустило тихое
// фоновое обновление
func (s *OrderStore) Update(ctx context.Context, id string, order model.Order) (model.Order, error) {
	const op = "store.OrderStore.Update"

	saved, err := s.backend.Update(ctx, id, order)
	if err != nil {
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate()
	return saved, nil
}

// Delete удаляет заказ; политика инвалидации кэша та же, что и у Update
func (s *OrderStore) Delete(ctx context.Context, id string) error {
	const op = "store.OrderStore.Delete"

	if err := s.backend.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate()
	return nil
}

// Invalidate помечает кэш устаревшим
// используется, когда об изменении заказа стало известно извне
// (например, из события Kafka)
func (s *OrderStore) Invalidate() {
	s.invalidate()
}

func (s *OrderStore) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		// запись заменяется новой, данные в кэшированном срезе
		// не модифицируются
		s.cache = s.cache.markedStale()
	}
}

// ClearCache безусловно сбрасывает кэш; используется при logout
func (s *OrderStore) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
}

// Orders возвращает текущее содержимое кэша (копию) либо пустой срез
func (s *OrderStore) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache == nil {
		return []model.Order{}
	}
	return model.CloneOrders(s.cache.Data)
}

// IsLoading сообщает, выполняется ли сейчас запрос списка
func (s *OrderStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err возвращает ошибку последней загрузки списка, если она была
func (s *OrderStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// IsCacheStale сообщает, устарел ли кэш; отсутствие кэша считается
// устареванием
func (s *OrderStore) IsCacheStale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache == nil {
		return true
	}
	return s.cache.IsStale
}

// Wait блокирует до завершения всех фоновых обновлений
// вызывается при остановке приложения
func (s *OrderStore) Wait() {
	s.bg.Wait()
}
