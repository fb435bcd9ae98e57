package worker

import (
	"context"

	"go.uber.org/zap"

	"roast-server/internal/messaging"
	"roast-server/internal/repository"
)

// UnlockHandler применяет события разблокировки после подтвержденной оплаты.
type UnlockHandler struct {
	roastRepo repository.RoastRepository
	logger    *zap.Logger
}

// NewUnlockHandler создает обработчик событий разблокировки.
func NewUnlockHandler(roastRepo repository.RoastRepository, logger *zap.Logger) *UnlockHandler {
	return &UnlockHandler{
		roastRepo: roastRepo,
		logger:    logger.Named("UnlockHandler"),
	}
}

// Handle помечает запись оплаченной. Операция идемпотентна; отсутствие
// записи (истекший TTL) не является ошибкой и не вызывает повторную доставку.
func (h *UnlockHandler) Handle(payload messaging.UnlockPayload) error {
	log := h.logger.With(zap.String("roastID", payload.RoastID))

	if payload.RoastID == "" {
		log.Warn("Unlock event without roast id, dropping")
		MetricsIncrementUnlock("invalid")
		return nil
	}

	if err := h.roastRepo.MarkPaid(context.Background(), payload.RoastID); err != nil {
		log.Error("Failed to mark roast as paid", zap.Error(err))
		MetricsIncrementUnlock("error")
		return err
	}

	MetricsIncrementUnlock("applied")
	log.Info("Roast unlocked")
	return nil
}
