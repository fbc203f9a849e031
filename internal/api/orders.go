package api

import (
	"context"
	"fmt"

	"github.com/mkorneev/orders-board/internal/model"
)

// Orders — типизированная обёртка над клиентом для эндпоинтов /orders
type Orders struct {
	client *Client
}

// NewOrders создает новый экземпляр Orders
func NewOrders(client *Client) *Orders {
	return &Orders{client: client}
}

// List запрашивает полный список заказов
func (o *Orders) List(ctx context.Context) ([]model.Order, error) {
	const op = "api.Orders.List"

	var orders []model.Order
	if err := o.client.Get(ctx, "/orders", &orders); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// Get запрашивает один заказ по его ID
func (o *Orders) Get(ctx context.Context, id string) (model.Order, error) {
	const op = "api.Orders.Get"

	var order model.Order
	if err := o.client.Get(ctx, "/orders/"+id, &order); err != nil {
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// Update отправляет изменённый заказ и возвращает каноническую версию,
// вычисленную сервером
func (o *Orders) Update(ctx context.Context, id string, order model.Order) (model.Order, error) {
	const op = "api.Orders.Update"

	var saved model.Order
	if err := o.client.Put(ctx, "/orders/"+id, order, &saved); err != nil {
		return model.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}

// Delete удаляет заказ по его ID
func (o *Orders) Delete(ctx context.Context, id string) error {
	const op = "api.Orders.Delete"

	if err := o.client.Delete(ctx, "/orders/"+id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
