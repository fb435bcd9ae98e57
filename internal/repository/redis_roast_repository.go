package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"roast-server/internal/models"
)

// Compile-time check to ensure redisRoastRepository implements RoastRepository
var _ RoastRepository = (*redisRoastRepository)(nil)

const (
	roastKeyPrefix = "roast:"
	jobKeyPrefix   = "roastjob:"
	// Обновления записи повторяют транзакцию при конфликте WATCH (гонка
	// между разблокировкой и финальной записью workflow) ограниченное
	// число раз.
	txMaxRetries = 5
)

type redisRoastRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRoastRepository creates a new Redis-backed RoastRepository.
func NewRedisRoastRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) RoastRepository {
	return &redisRoastRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisRoastRepo"),
	}
}

func roastKey(id string) string {
	return roastKeyPrefix + id
}

func jobKey(id string) string {
	return jobKeyPrefix + id
}

// Save stores the whole record as JSON with the configured TTL.
func (r *redisRoastRepository) Save(ctx context.Context, id string, roast *models.Roast) error {
	data, err := json.Marshal(roast)
	if err != nil {
		return fmt.Errorf("failed to marshal roast %s: %w", id, err)
	}

	if err := r.client.Set(ctx, roastKey(id), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save roast", zap.Error(err), zap.String("roastID", id))
		return fmt.Errorf("failed to save roast %s: %w", id, err)
	}

	r.logger.Debug("Roast saved",
		zap.String("roastID", id),
		zap.String("status", string(roast.Status)),
		zap.Bool("paid", roast.Paid),
	)
	return nil
}

// Get loads the record. Redis expiry makes an expired record indistinguishable
// from a never-created one, which is exactly the contract we want.
func (r *redisRoastRepository) Get(ctx context.Context, id string) (*models.Roast, error) {
	data, err := r.client.Get(ctx, roastKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoastNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get roast", zap.Error(err), zap.String("roastID", id))
		return nil, fmt.Errorf("failed to get roast %s: %w", id, err)
	}

	var roast models.Roast
	if err := json.Unmarshal(data, &roast); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roast %s: %w", id, err)
	}
	return &roast, nil
}

// updateUnderWatch performs a read-modify-write of the record under WATCH so
// concurrent updates (unlock vs. the workflow's final write) can never lose
// each other. mutate returns false when no write is needed. Retries on
// transaction conflicts up to txMaxRetries times.
func (r *redisRoastRepository) updateUnderWatch(ctx context.Context, id string, ttl time.Duration, mutate func(*models.Roast) bool) error {
	key := roastKey(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrRoastNotFound
		}
		if err != nil {
			return err
		}

		var roast models.Roast
		if err := json.Unmarshal(data, &roast); err != nil {
			return fmt.Errorf("failed to unmarshal roast %s: %w", id, err)
		}
		if !mutate(&roast) {
			return nil
		}

		updated, err := json.Marshal(&roast)
		if err != nil {
			return fmt.Errorf("failed to marshal roast %s: %w", id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < txMaxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Ключ изменился между GET и EXEC, пробуем снова
			r.logger.Debug("Record update conflict, retrying", zap.String("roastID", id))
			continue
		}
		return err
	}

	return fmt.Errorf("failed to update roast %s: too many transaction conflicts", id)
}

// MarkPaid flips paid=true under a WATCH transaction.
func (r *redisRoastRepository) MarkPaid(ctx context.Context, id string) error {
	// KeepTTL: оплата не продлевает жизнь записи
	err := r.updateUnderWatch(ctx, id, redis.KeepTTL, func(roast *models.Roast) bool {
		if roast.Paid {
			// Повторное событие - конечное состояние то же самое
			return false
		}
		roast.Paid = true
		return true
	})
	if errors.Is(err, ErrRoastNotFound) {
		// Запись могла истечь - молча игнорируем событие разблокировки
		r.logger.Warn("MarkPaid: roast not found, dropping unlock", zap.String("roastID", id))
		return nil
	}
	if err != nil {
		r.logger.Error("Failed to mark roast as paid", zap.Error(err), zap.String("roastID", id))
		return fmt.Errorf("failed to mark roast %s as paid: %w", id, err)
	}
	r.logger.Info("Roast marked as paid", zap.String("roastID", id))
	return nil
}

// SetReady overwrites the record with the completed content under WATCH.
// The stored paid flag and createdAt always win over the incoming record's:
// an unlock committed at any point before this write must survive it.
func (r *redisRoastRepository) SetReady(ctx context.Context, id string, ready *models.Roast) error {
	err := r.updateUnderWatch(ctx, id, r.ttl, func(roast *models.Roast) bool {
		paid := roast.Paid || ready.Paid
		createdAt := roast.CreatedAt
		*roast = *ready
		roast.ID = id
		roast.Status = models.RoastStatusReady
		roast.Paid = paid
		roast.CreatedAt = createdAt
		roast.Error = ""
		return true
	})
	if err != nil {
		if errors.Is(err, ErrRoastNotFound) {
			return err
		}
		r.logger.Error("Failed to publish completed roast", zap.Error(err), zap.String("roastID", id))
		return fmt.Errorf("failed to set roast %s ready: %w", id, err)
	}
	r.logger.Debug("Roast published as ready", zap.String("roastID", id))
	return nil
}

// SetError marks generation as failed. A record that already reached ready is
// left untouched (поздняя повторная доставка уже завершенной задачи).
func (r *redisRoastRepository) SetError(ctx context.Context, id string, message string) error {
	err := r.updateUnderWatch(ctx, id, r.ttl, func(roast *models.Roast) bool {
		if roast.Status == models.RoastStatusReady {
			return false
		}
		roast.Status = models.RoastStatusError
		roast.Error = message
		return true
	})
	if err != nil {
		if errors.Is(err, ErrRoastNotFound) {
			return err
		}
		r.logger.Error("Failed to mark roast as failed", zap.Error(err), zap.String("roastID", id))
		return fmt.Errorf("failed to set roast %s error state: %w", id, err)
	}
	return nil
}

// SaveProgress persists the workflow cursor with the record's TTL.
func (r *redisRoastRepository) SaveProgress(ctx context.Context, id string, progress *models.JobProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal job progress %s: %w", id, err)
	}
	if err := r.client.Set(ctx, jobKey(id), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save job progress", zap.Error(err), zap.String("roastID", id))
		return fmt.Errorf("failed to save job progress %s: %w", id, err)
	}
	r.logger.Debug("Job progress saved", zap.String("roastID", id), zap.String("step", string(progress.Step)))
	return nil
}

// GetProgress returns the saved cursor, or empty progress when the job has
// never checkpointed (fresh task or expired cursor).
func (r *redisRoastRepository) GetProgress(ctx context.Context, id string) (*models.JobProgress, error) {
	data, err := r.client.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.JobProgress{Step: models.JobStepNone}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job progress %s: %w", id, err)
	}

	var progress models.JobProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		// Поврежденный курсор не должен блокировать генерацию - начинаем заново
		r.logger.Warn("Corrupt job progress, restarting workflow", zap.Error(err), zap.String("roastID", id))
		return &models.JobProgress{Step: models.JobStepNone}, nil
	}
	return &progress, nil
}

// ClearProgress removes the cursor.
func (r *redisRoastRepository) ClearProgress(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, jobKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to clear job progress %s: %w", id, err)
	}
	return nil
}
