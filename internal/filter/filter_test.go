package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkorneev/orders-board/internal/model"
)

func fixtureOrders() []model.Order {
	return []model.Order{
		{
			ID:           "1",
			Number:       "ORD-001",
			CustomerName: "Иван Иванов",
			Status:       model.StatusNew,
			Total:        100,
			CreatedAt:    "2024-01-03T10:00:00Z",
		},
		{
			ID:           "2",
			Number:       "ORD-002",
			CustomerName: "Петр Петров",
			Status:       model.StatusProcessing,
			Total:        250,
			CreatedAt:    "2024-01-01T10:00:00Z",
		},
		{
			ID:           "3",
			Number:       "ORD-003",
			CustomerName: "Анна Сидорова",
			Status:       model.StatusDelivered,
			Total:        100,
			CreatedAt:    "2024-01-02T10:00:00Z",
		},
	}
}

func TestApply_IdentityWhenNoFilters(t *testing.T) {
	orders := fixtureOrders()

	// status=all и пустой поиск не меняют состав списка;
	// сортировка по дате asc восстанавливает хронологический порядок
	result := Apply(orders, "", StatusAll, SortByCreatedAt, SortAsc)

	require.Len(t, result, 3)
	assert.Equal(t, "2", result[0].ID)
	assert.Equal(t, "3", result[1].ID)
	assert.Equal(t, "1", result[2].ID)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	orders := fixtureOrders()

	Apply(orders, "", StatusAll, SortByCreatedAt, SortAsc)

	// вход остался в исходном порядке
	assert.Equal(t, "1", orders[0].ID)
	assert.Equal(t, "2", orders[1].ID)
	assert.Equal(t, "3", orders[2].ID)
}

func TestApply_SearchByCustomerName(t *testing.T) {
	orders := []model.Order{
		{ID: "1", Number: "ORD-001", CustomerName: "Иван Иванов", CreatedAt: "2024-01-01T10:00:00Z"},
		{ID: "2", Number: "ORD-002", CustomerName: "Петр Петров", CreatedAt: "2024-01-02T10:00:00Z"},
	}

	result := Apply(orders, "Иван", StatusAll, SortByCreatedAt, SortDesc)

	require.Len(t, result, 1)
	assert.Equal(t, "1", result[0].ID)
}

func TestApply_SearchByOrderNumber(t *testing.T) {
	orders := fixtureOrders()

	result := Apply(orders, "ord-002", StatusAll, SortByCreatedAt, SortDesc)

	require.Len(t, result, 1)
	assert.Equal(t, "2", result[0].ID)
}

func TestApply_StatusCombinedWithSearch(t *testing.T) {
	orders := fixtureOrders()

	result := Apply(orders, "Петр", string(model.StatusProcessing), SortByCreatedAt, SortDesc)

	require.Len(t, result, 1)
	assert.Equal(t, "2", result[0].ID)
	assert.Equal(t, "Петр Петров", result[0].CustomerName)
}

func TestApply_StatusFiltersOutOthers(t *testing.T) {
	orders := fixtureOrders()

	result := Apply(orders, "", string(model.StatusDelivered), SortByTotal, SortAsc)

	require.Len(t, result, 1)
	assert.Equal(t, "3", result[0].ID)
}

func TestApply_SortByTotal(t *testing.T) {
	orders := fixtureOrders()

	result := Apply(orders, "", StatusAll, SortByTotal, SortDesc)
	assert.Equal(t, "2", result[0].ID)

	result = Apply(orders, "", StatusAll, SortByTotal, SortAsc)
	assert.Equal(t, "2", result[2].ID)
}

func TestApply_SortIsStable(t *testing.T) {
	// у заказов 1 и 3 одинаковый total: их относительный порядок
	// должен сохраниться в обоих направлениях сортировки
	orders := fixtureOrders()

	result := Apply(orders, "", StatusAll, SortByTotal, SortAsc)
	require.Len(t, result, 3)
	assert.Equal(t, "1", result[0].ID)
	assert.Equal(t, "3", result[1].ID)

	result = Apply(orders, "", StatusAll, SortByTotal, SortDesc)
	require.Len(t, result, 3)
	assert.Equal(t, "1", result[1].ID)
	assert.Equal(t, "3", result[2].ID)
}

func TestPaginate(t *testing.T) {
	orders := fixtureOrders()

	page := Paginate(orders, 1, 2)
	require.Len(t, page, 2)
	assert.Equal(t, "1", page[0].ID)

	page = Paginate(orders, 2, 2)
	require.Len(t, page, 1)
	assert.Equal(t, "3", page[0].ID)

	assert.Empty(t, Paginate(orders, 3, 2))
	assert.Empty(t, Paginate(orders, 1, 0))

	// page < 1 трактуется как первая страница
	page = Paginate(orders, 0, 10)
	assert.Len(t, page, 3)
}
