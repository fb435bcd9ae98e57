package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"roast-server/internal/config"
	"roast-server/internal/messaging"
	"roast-server/internal/models"
	"roast-server/internal/repository"
	"roast-server/internal/schemas"
	"roast-server/internal/service"
)

// TaskHandler выполняет workflow генерации роаста: расчет карты → генерация
// текста → парсинг и сохранение. Курсор выполнения сохраняется после каждого
// внешнего шага, поэтому повторная доставка задачи продолжает с последнего
// завершенного шага, а не повторяет внешние вызовы.
type TaskHandler struct {
	cfg         *config.Config
	chartClient service.ChartClient
	aiClient    service.AIClient
	roastRepo   repository.RoastRepository
	logger      *zap.Logger
}

// NewTaskHandler создает новый экземпляр обработчика задач генерации.
func NewTaskHandler(
	cfg *config.Config,
	chartClient service.ChartClient,
	aiClient service.AIClient,
	roastRepo repository.RoastRepository,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{
		cfg:         cfg,
		chartClient: chartClient,
		aiClient:    aiClient,
		roastRepo:   roastRepo,
		logger:      logger.Named("TaskHandler"),
	}
}

// Handle обрабатывает одну задачу генерации. lastAttempt=true означает, что
// при ошибке повторной доставки больше не будет: запись обязана перейти в
// status=error, иначе она навсегда останется в generating - главный сценарий
// отказа, которого надо избежать.
func (h *TaskHandler) Handle(payload messaging.RoastTaskPayload, lastAttempt bool) (err error) {
	MetricsIncrementTasksReceived()
	taskStartTime := time.Now()
	log := h.logger.With(zap.String("roastID", payload.RoastID))
	log.Info("Processing generation task", zap.String("name", payload.Name))

	defer func() {
		MetricsRecordTaskDuration(time.Since(taskStartTime))
		if err != nil && lastAttempt {
			// Компенсация: внешние вызовы исчерпали попытки, фиксируем ошибку
			// в записи - она же и есть канал сообщения об ошибке для клиента.
			h.failRoast(payload.RoastID, err)
		}
		log.Info("Generation task finished",
			zap.Duration("duration", time.Since(taskStartTime)),
			zap.Bool("success", err == nil),
		)
	}()

	ctx := context.Background()

	progress, err := h.roastRepo.GetProgress(ctx, payload.RoastID)
	if err != nil {
		MetricsIncrementTaskFailed("progress_load")
		return fmt.Errorf("failed to load job progress: %w", err)
	}

	// --- Шаг 1: Расчет натальной карты ---
	var chart *models.ChartData
	if progress.Step == models.JobStepNone || progress.Chart == nil {
		details := models.BirthDetails{
			Name:   payload.Name,
			Year:   payload.Year,
			Month:  payload.Month,
			Day:    payload.Day,
			Hour:   payload.Hour,
			Minute: payload.Minute,
			Lat:    payload.Lat,
			Lon:    payload.Lon,
			Tz:     payload.Tz,
		}
		chart, err = h.computeChartWithRetries(ctx, log, details)
		if err != nil {
			MetricsIncrementTaskFailed("chart_error")
			return err
		}
		progress = &models.JobProgress{Step: models.JobStepChartComputed, Chart: chart}
		if saveErr := h.roastRepo.SaveProgress(ctx, payload.RoastID, progress); saveErr != nil {
			// Курсор - оптимизация; его потеря не должна ронять задачу
			log.Warn("Failed to checkpoint chart step", zap.Error(saveErr))
		}
	} else {
		chart = progress.Chart
		MetricsIncrementStepResumed(string(models.JobStepChartComputed))
		log.Info("Resuming task: chart already computed")
	}

	// --- Шаг 2: Генерация текста роаста ---
	var rawText string
	if progress.Step != models.JobStepTextGenerated || progress.RawText == "" {
		rawText, err = h.generateTextWithRetries(ctx, log, payload.Name, chart.FormattedOutput)
		if err != nil {
			MetricsIncrementTaskFailed("ai_error")
			return err
		}
		progress = &models.JobProgress{Step: models.JobStepTextGenerated, Chart: chart, RawText: rawText}
		if saveErr := h.roastRepo.SaveProgress(ctx, payload.RoastID, progress); saveErr != nil {
			log.Warn("Failed to checkpoint generation step", zap.Error(saveErr))
		}
	} else {
		rawText = progress.RawText
		MetricsIncrementStepResumed(string(models.JobStepTextGenerated))
		log.Info("Resuming task: text already generated")
	}

	// --- Шаг 3: Парсинг и сохранение ---
	// Парсер деградирует молча: пустой тизер/секции не ошибка workflow.
	teaser, sections := schemas.ParseRoastOutput(rawText)
	if teaser == "" && len(sections) == 0 {
		log.Warn("Generator output contained no recognizable markers",
			zap.Int("rawTextLength", len(rawText)))
	}

	ready := &models.Roast{
		ID:       payload.RoastID,
		Status:   models.RoastStatusReady,
		Name:     payload.Name,
		SunSign:  chart.SunSign,
		MoonSign: chart.MoonSign,
		Rising:   chart.RisingSign,
		Mercury:  chart.MercurySign,
		Venus:    chart.VenusSign,
		Mars:     chart.MarsSign,
		Jupiter:  chart.JupiterSign,
		Saturn:   chart.SaturnSign,
		Teaser:   teaser,
		Sections: sections,
	}
	// SetReady пишет под WATCH: флаг paid и createdAt берутся из хранимой
	// записи, поэтому разблокировка, пришедшая во время генерации, не теряется
	if err := h.roastRepo.SetReady(ctx, payload.RoastID, ready); err != nil {
		if errors.Is(err, repository.ErrRoastNotFound) {
			// Запись истекла, пока задача ждала в очереди - результат некому отдавать
			log.Warn("Roast record expired before completion, dropping result")
			_ = h.roastRepo.ClearProgress(ctx, payload.RoastID)
			MetricsIncrementTaskFailed("record_expired")
			return nil
		}
		MetricsIncrementTaskFailed("save_error")
		return fmt.Errorf("failed to save completed roast: %w", err)
	}
	_ = h.roastRepo.ClearProgress(ctx, payload.RoastID)

	MetricsIncrementTaskSucceeded()
	log.Info("Roast ready",
		zap.Int("sections", len(sections)),
		zap.Int("teaserLength", len(teaser)),
	)
	return nil
}

// computeChartWithRetries вызывает сервис карты с ограниченными повторами.
func (h *TaskHandler) computeChartWithRetries(ctx context.Context, log *zap.Logger, details models.BirthDetails) (*models.ChartData, error) {
	var lastErr error
	for attempt := 1; attempt <= h.cfg.AIMaxAttempts; attempt++ {
		chart, err := h.chartClient.ComputeChart(ctx, details)
		if err == nil {
			return chart, nil
		}
		lastErr = err
		log.Warn("Chart computation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", h.cfg.AIMaxAttempts),
			zap.Error(err),
		)
		if attempt < h.cfg.AIMaxAttempts {
			time.Sleep(h.backoffDelay(attempt))
		}
	}
	return nil, fmt.Errorf("chart computation failed after %d attempts: %w", h.cfg.AIMaxAttempts, lastErr)
}

// generateTextWithRetries вызывает AI с ограниченными повторами.
func (h *TaskHandler) generateTextWithRetries(ctx context.Context, log *zap.Logger, name, chartOutput string) (string, error) {
	userPrompt := service.BuildRoastUserPrompt(name, chartOutput)
	params := service.GenerationParams{
		Temperature: service.Float64Ptr(1.0),
		MaxTokens:   service.IntPtr(h.cfg.AIMaxTokens),
	}

	var lastErr error
	for attempt := 1; attempt <= h.cfg.AIMaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, h.cfg.AITimeout)
		text, usage, err := h.aiClient.GenerateText(callCtx, service.RoastSystemPrompt, userPrompt, params)
		cancel()
		if err == nil {
			log.Info("AI generation succeeded",
				zap.Int("attempt", attempt),
				zap.Int("totalTokens", usage.TotalTokens),
			)
			return text, nil
		}
		lastErr = err
		log.Warn("AI generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", h.cfg.AIMaxAttempts),
			zap.Error(err),
		)
		if attempt < h.cfg.AIMaxAttempts {
			time.Sleep(h.backoffDelay(attempt))
		}
	}
	return "", fmt.Errorf("text generation failed after %d attempts: %w", h.cfg.AIMaxAttempts, lastErr)
}

// backoffDelay - экспоненциальная задержка с джиттером ±10%.
func (h *TaskHandler) backoffDelay(attempt int) time.Duration {
	delay := float64(h.cfg.AIBaseRetryDelay) * math.Pow(2, float64(attempt-1))
	jitter := delay * 0.1
	delay += jitter * (rand.Float64()*2 - 1)
	waitDuration := time.Duration(delay)
	if waitDuration < h.cfg.AIBaseRetryDelay {
		waitDuration = h.cfg.AIBaseRetryDelay
	}
	return waitDuration
}

// failRoast переводит запись в терминальный статус error. Поля контента не
// заполняются; paid и createdAt сохраняются, уже готовая запись не трогается.
func (h *TaskHandler) failRoast(roastID string, cause error) {
	ctx := context.Background()

	h.logger.Error("Marking roast as failed",
		zap.String("roastID", roastID), zap.Error(cause))

	err := h.roastRepo.SetError(ctx, roastID, "Roast generation failed. Please try again.")
	if err != nil {
		if errors.Is(err, repository.ErrRoastNotFound) {
			// Записи нет (истекла) - компенсировать нечего
			h.logger.Warn("Cannot mark roast as failed: record not found",
				zap.String("roastID", roastID))
			return
		}
		// Хранилище недоступно: запись останется в generating до повторной
		// обработки из DLQ
		h.logger.Error("Failed to persist error state",
			zap.String("roastID", roastID), zap.Error(err))
		return
	}
	_ = h.roastRepo.ClearProgress(ctx, roastID)
}
