package repository_test // Используем _test пакет для изоляции

import (
	"context"
	"fmt"
	"testing"
	"time"

	"roast-server/internal/models"
	"roast-server/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// RedisRepositorySuite содержит состояние интеграционных тестов репозитория.
type RedisRepositorySuite struct {
	suite.Suite
	ctx         context.Context
	rdContainer *tcredis.RedisContainer
	redisClient *redis.Client
	repo        repository.RoastRepository
	logger      *zap.Logger
}

// SetupSuite выполняется один раз перед всеми тестами в наборе.
func (s *RedisRepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.logger, err = zap.NewDevelopment()
	require.NoError(s.T(), err, "Failed to create logger for tests")

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	redisHost, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	redisPort, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)
	redisAddr := fmt.Sprintf("%s:%s", redisHost, redisPort.Port())

	s.redisClient = redis.NewClient(&redis.Options{Addr: redisAddr})
	_, err = s.redisClient.Ping(s.ctx).Result()
	require.NoError(s.T(), err, "Failed to connect to test redis")

	s.repo = repository.NewRedisRoastRepository(s.redisClient, time.Hour, s.logger)
}

// TearDownSuite выполняется один раз после всех тестов в наборе.
func (s *RedisRepositorySuite) TearDownSuite() {
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.rdContainer != nil {
		if err := s.rdContainer.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate redis container", zap.Error(err))
		}
	}
}

// SetupTest очищает Redis перед каждым тестом.
func (s *RedisRepositorySuite) SetupTest() {
	require.NoError(s.T(), s.redisClient.FlushDB(s.ctx).Err(), "Failed to flush Redis DB")
}

// TestRedisRepositorySuite запускает набор тестов.
func TestRedisRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(RedisRepositorySuite))
}

// --- Сами Тестовые Функции ---

func (s *RedisRepositorySuite) TestSaveAndGet() {
	t := s.T()
	roast := &models.Roast{
		ID:        "roast-1",
		Status:    models.RoastStatusReady,
		Name:      "Ivan",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		SunSign:   "Aries",
		Teaser:    "teaser",
		Sections:  []models.RoastSection{{Title: "T", Content: "C"}},
	}

	require.NoError(t, s.repo.Save(s.ctx, roast.ID, roast))

	got, err := s.repo.Get(s.ctx, roast.ID)
	require.NoError(t, err)
	require.Equal(t, roast.ID, got.ID)
	require.Equal(t, roast.Status, got.Status)
	require.Equal(t, roast.Sections, got.Sections)
	require.True(t, roast.CreatedAt.Equal(got.CreatedAt))

	// TTL должен быть выставлен
	ttl, err := s.redisClient.TTL(s.ctx, "roast:"+roast.ID).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
}

func (s *RedisRepositorySuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, "no-such-roast")
	require.ErrorIs(s.T(), err, repository.ErrRoastNotFound)
}

func (s *RedisRepositorySuite) TestMarkPaid() {
	t := s.T()
	roast := &models.Roast{ID: "roast-2", Status: models.RoastStatusReady, Name: "Olga"}
	require.NoError(t, s.repo.Save(s.ctx, roast.ID, roast))

	ttlBefore, err := s.redisClient.TTL(s.ctx, "roast:"+roast.ID).Result()
	require.NoError(t, err)

	require.NoError(t, s.repo.MarkPaid(s.ctx, roast.ID))

	got, err := s.repo.Get(s.ctx, roast.ID)
	require.NoError(t, err)
	require.True(t, got.Paid)

	// Повторная оплата идемпотентна
	require.NoError(t, s.repo.MarkPaid(s.ctx, roast.ID))
	got, err = s.repo.Get(s.ctx, roast.ID)
	require.NoError(t, err)
	require.True(t, got.Paid)

	// TTL не сбрасывается при оплате
	ttlAfter, err := s.redisClient.TTL(s.ctx, "roast:"+roast.ID).Result()
	require.NoError(t, err)
	require.LessOrEqual(t, ttlAfter, ttlBefore)
	require.Greater(t, ttlAfter, time.Duration(0))
}

func (s *RedisRepositorySuite) TestMarkPaidMissingIsNotError() {
	// Запись могла истечь между оформлением заказа и вебхуком
	require.NoError(s.T(), s.repo.MarkPaid(s.ctx, "expired-roast"))
}

func (s *RedisRepositorySuite) TestSetReadyPreservesPaid() {
	t := s.T()
	createdAt := time.Now().UTC().Truncate(time.Second)
	pending := &models.Roast{
		ID:        "roast-5",
		Status:    models.RoastStatusGenerating,
		Name:      "Dmitry",
		CreatedAt: createdAt,
	}
	require.NoError(t, s.repo.Save(s.ctx, pending.ID, pending))

	// Разблокировка приходит, пока workflow еще работает
	require.NoError(t, s.repo.MarkPaid(s.ctx, pending.ID))

	ready := &models.Roast{
		ID:       pending.ID,
		Status:   models.RoastStatusReady,
		Name:     "Dmitry",
		SunSign:  "Leo",
		Teaser:   "teaser",
		Sections: []models.RoastSection{{Title: "T", Content: "C"}},
		// Paid=false: workflow ничего не знает об оплате
	}
	require.NoError(t, s.repo.SetReady(s.ctx, pending.ID, ready))

	got, err := s.repo.Get(s.ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoastStatusReady, got.Status)
	require.Equal(t, "Leo", got.SunSign)
	// Оплата во время генерации не теряется финальной записью
	require.True(t, got.Paid)
	require.True(t, createdAt.Equal(got.CreatedAt))
}

func (s *RedisRepositorySuite) TestSetReadyMissing() {
	err := s.repo.SetReady(s.ctx, "expired-roast", &models.Roast{Status: models.RoastStatusReady})
	require.ErrorIs(s.T(), err, repository.ErrRoastNotFound)
}

func (s *RedisRepositorySuite) TestSetErrorMarksGeneratingRecord() {
	t := s.T()
	pending := &models.Roast{ID: "roast-6", Status: models.RoastStatusGenerating, Name: "Anna"}
	require.NoError(t, s.repo.Save(s.ctx, pending.ID, pending))

	require.NoError(t, s.repo.SetError(s.ctx, pending.ID, "generation failed"))

	got, err := s.repo.Get(s.ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoastStatusError, got.Status)
	require.Equal(t, "generation failed", got.Error)
}

func (s *RedisRepositorySuite) TestSetErrorDoesNotOverwriteReady() {
	t := s.T()
	// Поздняя компенсация после успешного завершения не должна портить результат
	ready := &models.Roast{
		ID:     "roast-7",
		Status: models.RoastStatusReady,
		Teaser: "teaser",
	}
	require.NoError(t, s.repo.Save(s.ctx, ready.ID, ready))

	require.NoError(t, s.repo.SetError(s.ctx, ready.ID, "generation failed"))

	got, err := s.repo.Get(s.ctx, ready.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoastStatusReady, got.Status)
	require.Equal(t, "teaser", got.Teaser)
	require.Empty(t, got.Error)
}

func (s *RedisRepositorySuite) TestProgressRoundtrip() {
	t := s.T()
	progress := &models.JobProgress{
		Step: models.JobStepChartComputed,
		Chart: &models.ChartData{
			FormattedOutput: "Sun in Leo",
			SunSign:         "Leo",
		},
	}

	require.NoError(t, s.repo.SaveProgress(s.ctx, "roast-3", progress))

	got, err := s.repo.GetProgress(s.ctx, "roast-3")
	require.NoError(t, err)
	require.Equal(t, models.JobStepChartComputed, got.Step)
	require.NotNil(t, got.Chart)
	require.Equal(t, "Leo", got.Chart.SunSign)

	require.NoError(t, s.repo.ClearProgress(s.ctx, "roast-3"))

	got, err = s.repo.GetProgress(s.ctx, "roast-3")
	require.NoError(t, err)
	require.Equal(t, models.JobStepNone, got.Step)
}

func (s *RedisRepositorySuite) TestCorruptProgressRestartsWorkflow() {
	t := s.T()
	// Битый курсор не должен ронять воркер: начинаем с начала
	require.NoError(t, s.redisClient.Set(s.ctx, "roastjob:roast-4", "{not json", time.Hour).Err())

	got, err := s.repo.GetProgress(s.ctx, "roast-4")
	require.NoError(t, err)
	require.Equal(t, models.JobStepNone, got.Step)
}
