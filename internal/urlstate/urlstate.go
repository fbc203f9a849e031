// Package urlstate отвечает за двустороннее отображение параметров
// фильтрации списка заказов в строку запроса URL и обратно
package urlstate

import (
	"net/url"
	"strconv"

	"github.com/mkorneev/orders-board/internal/filter"
)

// Значения по умолчанию; ключи с такими значениями в URL не пишутся
const (
	DefaultStatus    = filter.StatusAll
	DefaultSearch    = ""
	DefaultSortBy    = filter.SortByCreatedAt
	DefaultSortOrder = filter.SortDesc
	DefaultPageSize  = 10
)

// Params — параметры фильтрации, сортировки и пагинации списка заказов
// пять значений полностью определяют видимое подмножество заказов
type Params struct {
	Search    string
	Status    string
	SortBy    filter.SortField
	SortOrder filter.SortOrder
	PageSize  int
}

// Defaults возвращает параметры по умолчанию
func Defaults() Params {
	return Params{
		Search:    DefaultSearch,
		Status:    DefaultStatus,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
		PageSize:  DefaultPageSize,
	}
}

// FromQuery читает параметры из строки запроса, подставляя значения
// по умолчанию для отсутствующих или некорректных ключей
func FromQuery(values url.Values) Params {
	params := Defaults()

	if status := values.Get("status"); status != "" {
		params.Status = status
	}
	if search := values.Get("search"); search != "" {
		params.Search = search
	}
	if sortBy := values.Get("sortBy"); sortBy == string(filter.SortByTotal) {
		params.SortBy = filter.SortByTotal
	}
	if sortOrder := values.Get("sortOrder"); sortOrder == string(filter.SortAsc) {
		params.SortOrder = filter.SortAsc
	}
	if raw := values.Get("pageSize"); raw != "" {
		// некорректное значение не ошибка: остаёмся на значении по умолчанию
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			params.PageSize = size
		}
	}

	return params
}

// MergeInto записывает параметры в строку запроса: ключи с дефолтными
// значениями удаляются, остальные перезаписываются, а посторонние ключи
// (не управляемые этим пакетом) сохраняются как есть
func (p Params) MergeInto(values url.Values) url.Values {
	merged := url.Values{}
	for key, vals := range values {
		merged[key] = append([]string(nil), vals...)
	}

	setOrDelete(merged, "status", p.Status, DefaultStatus)
	setOrDelete(merged, "search", p.Search, DefaultSearch)
	setOrDelete(merged, "sortBy", string(p.SortBy), string(DefaultSortBy))
	setOrDelete(merged, "sortOrder", string(p.SortOrder), string(DefaultSortOrder))
	setOrDelete(merged, "pageSize", strconv.Itoa(p.PageSize), strconv.Itoa(DefaultPageSize))

	return merged
}

// Encode сериализует параметры в строку запроса без посторонних ключей
func (p Params) Encode() string {
	return p.MergeInto(url.Values{}).Encode()
}

func setOrDelete(values url.Values, key, value, defaultValue string) {
	if value == defaultValue {
		values.Del(key)
		return
	}
	values.Set(key, value)
}
