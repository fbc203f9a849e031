// Package filter содержит чистые функции фильтрации и сортировки заказов
// состояние здесь не хранится, входные срезы не модифицируются
package filter

import (
	"sort"
	"strings"

	"github.com/mkorneev/orders-board/internal/model"
)

// SortField — поле сортировки списка заказов
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByTotal     SortField = "total"
)

// SortOrder — направление сортировки
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// StatusAll — специальное значение фильтра «все статусы»
const StatusAll = "all"

// Apply применяет все фильтры к списку заказов в фиксированном порядке:
// статус, затем поиск, затем сортировка
// работает с копией, вход остаётся нетронутым
func Apply(
	orders []model.Order,
	searchQuery string,
	status string,
	sortField SortField,
	sortOrder SortOrder,
) []model.Order {
	result := make([]model.Order, len(orders))
	copy(result, orders)

	result = filterByStatus(result, status)
	result = filterBySearch(result, searchQuery)
	sortOrders(result, sortField, sortOrder)

	return result
}

// Paginate возвращает страницу списка (нумерация страниц с единицы)
// выход за пределы списка даёт пустую страницу, а не ошибку
func Paginate(orders []model.Order, page, pageSize int) []model.Order {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []model.Order{}
	}

	start := (page - 1) * pageSize
	if start >= len(orders) {
		return []model.Order{}
	}

	end := start + pageSize
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end]
}

// filterByStatus оставляет заказы с заданным статусом
// значение «all» отключает фильтр
func filterByStatus(orders []model.Order, status string) []model.Order {
	if status == StatusAll || status == "" {
		return orders
	}

	filtered := orders[:0]
	for _, order := range orders {
		if string(order.Status) == status {
			filtered = append(filtered, order)
		}
	}
	return filtered
}

// filterBySearch оставляет заказы, у которых имя клиента или номер
// содержат поисковую строку (без учёта регистра)
func filterBySearch(orders []model.Order, query string) []model.Order {
	if query == "" {
		return orders
	}

	query = strings.ToLower(query)
	filtered := orders[:0]
	for _, order := range orders {
		if strings.Contains(strings.ToLower(order.CustomerName), query) ||
			strings.Contains(strings.ToLower(order.Number), query) {
			filtered = append(filtered, order)
		}
	}
	return filtered
}

// sortOrders сортирует заказы по выбранному полю
// сортировка стабильная: при равных значениях исходный относительный
// порядок сохраняется
func sortOrders(orders []model.Order, field SortField, order SortOrder) {
	less := func(a, b *model.Order) bool {
		if field == SortByTotal {
			return a.Total < b.Total
		}
		return a.CreatedAtTime().Before(b.CreatedAtTime())
	}

	sort.SliceStable(orders, func(i, j int) bool {
		if order == SortAsc {
			return less(&orders[i], &orders[j])
		}
		return less(&orders[j], &orders[i])
	})
}
