package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// OrderInvalidator — это интерфейс, который абстрагирует консьюмер
// от конкретной реализации стора заказов
type OrderInvalidator interface {
	Invalidate()
}

// ChangeEvent — событие об изменении заказа, произошедшем вне приложения
// (другой клиент обновил или удалил заказ)
type ChangeEvent struct {
	OrderID string `json:"order_id"`
	Action  string `json:"action"` // updated | deleted
}

// Consumer слушает события об изменениях заказов и помечает кэш списка
// устаревшим: следующее чтение списка запустит тихое фоновое обновление
type Consumer struct {
	reader *kafka.Reader
	store  OrderInvalidator
	log    *slog.Logger
}

// NewConsumer создает новый экземпляр консьюмера
func NewConsumer(brokers []string, topic, groupID string, store OrderInvalidator, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})

	return &Consumer{
		reader: reader,
		store:  store,
		log:    log,
	}
}

// Run запускает цикл чтения сообщений
// функция блокирующая, запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	log := c.log.With(slog.String("component", "kafka_consumer"))
	log.Info("kafka consumer started")

	for {
		select {
		case <-ctx.Done():
			log.Info("context cancelled, stopping consumer")
			return
		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				if errors.Is(err, io.EOF) {
					log.Info("kafka reader closed")
					return
				}
				log.Error("failed to fetch message", slog.String("error", err.Error()))
				continue
			}

			c.handleMessage(msg)

			// событие лишь помечает кэш устаревшим, повторная доставка
			// безвредна, поэтому offset фиксируем безусловно
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				log.Error("failed to commit message", slog.String("error", err.Error()))
			}
		}
	}
}

// handleMessage парсит одно сообщение и инвалидирует кэш
func (c *Consumer) handleMessage(msg kafka.Message) {
	var event ChangeEvent

	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// сообщение невалидно: логируем и пропускаем,
		// перечитывать его бессмысленно
		c.log.Warn("failed to unmarshal change event, skipping", slog.String("error", err.Error()))
		return
	}

	c.store.Invalidate()
	c.log.Info("order change event processed, cache marked stale",
		slog.String("order_id", event.OrderID),
		slog.String("action", event.Action),
	)
}

// Close останавливает консьюмер
func (c *Consumer) Close() error {
	c.log.Info("closing kafka consumer")
	return c.reader.Close()
}
