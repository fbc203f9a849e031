package model

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// OrderStatus — статус заказа
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Statuses перечисляет все допустимые статусы заказа
var Statuses = []OrderStatus{
	StatusNew,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// IsValid сообщает, является ли значение допустимым статусом
func (s OrderStatus) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Order представляет заказ со стороны бэкенда
// теги validate используются для проверки корректности данных при получении
type Order struct {
	ID           string      `json:"id" validate:"required"`
	Number       string      `json:"number" validate:"required"`
	CustomerName string      `json:"customerName" validate:"required"`
	Status       OrderStatus `json:"status" validate:"required,oneof=new processing shipped delivered cancelled"`
	Items        []OrderItem `json:"items" validate:"required,gt=0,dive"`
	Total        float64     `json:"total"`
	CreatedAt    string      `json:"createdAt" validate:"required"` // ISO-8601
}

// OrderItem представляет одну позицию в заказе
type OrderItem struct {
	ProductID   int     `json:"productId"`
	ProductName string  `json:"productName" validate:"required"`
	Qty         float64 `json:"qty" validate:"gte=1"`
	Price       float64 `json:"price" validate:"gte=0.01"`
}

var validate = validator.New()

// Validate проверяет корректность структуры Order на основе тегов validate
func (o *Order) Validate() error {
	return validate.Struct(o)
}

// ItemsTotal возвращает сумму qty*price по всем позициям заказа
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.Qty * item.Price
	}
	return sum
}

// CreatedAtTime парсит CreatedAt как метку времени
// при некорректном значении возвращает нулевое время — такие заказы
// не ломают сортировку по дате, а просто уходят в её край
func (o *Order) CreatedAtTime() time.Time {
	t, err := time.Parse(time.RFC3339, o.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clone возвращает глубокую копию заказа
// нужен везде, где снимок обязан быть значением, а не ссылкой:
// откат оптимистичного сохранения, выдача данных из кэша
func (o *Order) Clone() Order {
	clone := *o
	if o.Items != nil {
		clone.Items = make([]OrderItem, len(o.Items))
		copy(clone.Items, o.Items)
	}
	return clone
}

// CloneOrders возвращает глубокую копию среза заказов
func CloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	result := make([]Order, len(orders))
	for i := range orders {
		result[i] = orders[i].Clone()
	}
	return result
}
