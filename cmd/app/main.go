package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkorneev/orders-board/internal/api"
	"github.com/mkorneev/orders-board/internal/auth"
	"github.com/mkorneev/orders-board/internal/config"
	"github.com/mkorneev/orders-board/internal/lib/logger"
	"github.com/mkorneev/orders-board/internal/store"
	httptransport "github.com/mkorneev/orders-board/internal/transport/http"
	"github.com/mkorneev/orders-board/internal/transport/kafka"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad("config/config.yaml")

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level)
	log.Info("starting orders-board", slog.String("log_level", cfg.Logger.Level))

	// 3. Инициализация сессии авторизации
	session := auth.NewSession(auth.NewMemoryStorage(), log)

	// 4. Инициализация клиента бэкенда заказов
	client := api.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	client.SetTokenProvider(session.Token)
	// любой ответ 401 завершает сессию, с какой бы операции он ни пришёл
	client.OnUnauthorized(session.Logout)
	backend := api.NewOrders(client)

	// 5. Инициализация стора заказов
	orderStore := store.NewOrderStore(backend, cfg.Cache.TTL, log)
	// при выходе из системы кэш сбрасывается безусловно
	session.OnLogout(orderStore.ClearCache)
	log.Info("order store initialized", slog.String("backend", cfg.Backend.BaseURL))

	// 6. Инициализация и запуск консьюмера событий об изменениях заказов
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, orderStore, log)
	ctx, cancel := context.WithCancel(context.Background())
	go consumer.Run(ctx)

	// 7. Инициализация и запуск HTTP-сервера приложения
	handler := httptransport.NewHandler(orderStore, session, log)
	httpServer := httptransport.NewServer(cfg.HTTPServer.Port, handler, cfg.HTTPServer.Timeout)
	log.Info("starting http server", slog.String("port", cfg.HTTPServer.Port))

	go func() {
		if err := httpServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// 8. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down application")
	cancel() // сигнал для консьюмера на завершение

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	if err := consumer.Close(); err != nil {
		log.Error("error closing kafka consumer", slog.String("error", err.Error()))
	}

	// дожидаемся фоновых обновлений кэша
	orderStore.Wait()

	log.Info("application stopped")
}
