package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"roast-server/internal/config"
	"roast-server/internal/logger"
	"roast-server/internal/messaging"
	"roast-server/internal/repository"
	"roast-server/internal/service"
	"roast-server/internal/worker"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск воркера генерации роастов...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer zapLogger.Sync()

	// --- HTTP-сервер для метрик Prometheus ---
	go startMetricsServer(cfg.MetricsPort, zapLogger)

	// --- Подключение к Redis ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		zapLogger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
	}
	cancelPing()
	defer redisClient.Close()
	zapLogger.Info("Успешное подключение к Redis")

	// --- Подключение к RabbitMQ ---
	rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
	}
	defer rabbitConn.Close()
	zapLogger.Info("Успешное подключение к RabbitMQ")

	// Настраиваем DLX/DLQ до объявления основных очередей
	setupCh, err := rabbitConn.Channel()
	if err != nil {
		zapLogger.Fatal("Не удалось открыть канал RabbitMQ", zap.Error(err))
	}
	if err := messaging.SetupDeadLetter(setupCh); err != nil {
		zapLogger.Fatal("Не удалось настроить DLX/DLQ", zap.Error(err))
	}
	_ = setupCh.Close()
	zapLogger.Info("DLX/DLQ настроены")

	// --- Инициализация зависимостей ---
	aiClient, err := service.NewAIClient(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Ошибка инициализации AI клиента", zap.Error(err))
	}
	chartClient := service.NewChartClient(cfg.ChartServiceURL, cfg.ChartServiceTimeout, zapLogger)
	roastRepo := repository.NewRedisRoastRepository(redisClient, cfg.RoastTTL, zapLogger)

	taskHandler := worker.NewTaskHandler(cfg, chartClient, aiClient, roastRepo, zapLogger)
	unlockHandler := worker.NewUnlockHandler(roastRepo, zapLogger)

	// --- Консьюмер задач генерации ---
	taskConsumer := messaging.NewConsumer(rabbitConn, messaging.QueueRoastTasks, zapLogger)
	err = taskConsumer.Start(func(body []byte, redelivered bool) error {
		var payload messaging.RoastTaskPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			// Невалидное сообщение уйдет в DLQ после повторной доставки
			zapLogger.Error("Не удалось разобрать задачу генерации", zap.Error(err))
			worker.MetricsIncrementTaskFailed("deserialization")
			return err
		}
		return taskHandler.Handle(payload, redelivered)
	})
	if err != nil {
		zapLogger.Fatal("Не удалось запустить консьюмер задач", zap.Error(err))
	}

	// --- Консьюмер событий разблокировки ---
	unlockConsumer := messaging.NewConsumer(rabbitConn, messaging.QueueUnlockEvents, zapLogger)
	err = unlockConsumer.Start(func(body []byte, redelivered bool) error {
		var payload messaging.UnlockPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			zapLogger.Error("Не удалось разобрать событие разблокировки", zap.Error(err))
			worker.MetricsIncrementUnlock("deserialization")
			return err
		}
		return unlockHandler.Handle(payload)
	})
	if err != nil {
		zapLogger.Fatal("Не удалось запустить консьюмер разблокировок", zap.Error(err))
	}

	zapLogger.Info(" [*] Воркер запущен, ожидание сообщений. Для выхода нажмите CTRL+C")

	// --- Graceful shutdown ---
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	<-stopChan
	zapLogger.Info("Получен сигнал завершения, останавливаем консьюмеры...")

	taskConsumer.Stop()
	unlockConsumer.Stop()
	zapLogger.Info("Воркер остановлен")
}

// startMetricsServer поднимает HTTP-сервер с эндпоинтом /metrics.
func startMetricsServer(port string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("Сервер метрик Prometheus запущен", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logger.Error("Ошибка сервера метрик", zap.Error(err))
	}
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
