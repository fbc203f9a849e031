package store

import (
	"time"

	"github.com/mkorneev/orders-board/internal/model"
)

// CacheEntry оборачивает закэшированный список заказов метаданными:
// моментом получения и флагом устаревания
// запись заменяется только целиком, частичных правок данных не бывает
type CacheEntry struct {
	Data      []model.Order
	Timestamp time.Time
	IsStale   bool
}

// fresh сообщает, можно ли отдавать запись без обращения к бэкенду
func (e *CacheEntry) fresh(now time.Time, ttl time.Duration) bool {
	return !e.IsStale && now.Sub(e.Timestamp) < ttl
}

// markedStale возвращает новую запись с теми же данными и взведённым
// флагом устаревания; исходная запись не модифицируется
func (e *CacheEntry) markedStale() *CacheEntry {
	return &CacheEntry{
		Data:      e.Data,
		Timestamp: e.Timestamp,
		IsStale:   true,
	}
}
