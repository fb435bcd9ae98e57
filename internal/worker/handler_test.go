package worker_test

import (
	"errors"
	"testing"
	"time"

	"roast-server/internal/config"
	"roast-server/internal/messaging"
	"roast-server/internal/mocks"
	"roast-server/internal/models"
	"roast-server/internal/repository"
	"roast-server/internal/service"
	"roast-server/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const (
	testRoastID = "roast-abc-123"
	testName    = "Maria"
)

var testRawOutput = "---TEASER_START---\nYour Sun is tired of you.\n---TEASER_END---\n" +
	"---SECTION_START---\nTITLE: Sun Problems\nCONTENT: Let's talk.\n---SECTION_END---\n"

func testConfig() *config.Config {
	return &config.Config{
		AITimeout:        5 * time.Second,
		AIMaxAttempts:    2,
		AIBaseRetryDelay: time.Millisecond,
		AIMaxTokens:      4000,
	}
}

func testChart() *models.ChartData {
	return &models.ChartData{
		FormattedOutput: "Sun in Leo, Moon in Pisces",
		SunSign:         "Leo",
		MoonSign:        "Pisces",
		RisingSign:      "Virgo",
		MercurySign:     "Cancer",
		VenusSign:       "Gemini",
		MarsSign:        "Aries",
		JupiterSign:     "Taurus",
		SaturnSign:      "Capricorn",
	}
}

func testPayload() messaging.RoastTaskPayload {
	return messaging.RoastTaskPayload{
		RoastID: testRoastID,
		Name:    testName,
		Year:    1995, Month: 7, Day: 23,
		Hour: 14, Minute: 30,
		Lat: 55.7558, Lon: 37.6173,
		Tz: "Europe/Moscow",
	}
}

func emptyProgress() *models.JobProgress {
	return &models.JobProgress{Step: models.JobStepNone}
}

func testUsage() service.UsageInfo {
	return service.UsageInfo{PromptTokens: 500, CompletionTokens: 900, TotalTokens: 1400}
}

func TestTaskHandler_Handle(t *testing.T) {
	logger := zap.NewNop()

	t.Run("Successful full pipeline", func(t *testing.T) {
		mockChart := mocks.NewMockChartClient(t)
		mockAI := mocks.NewMockAIClient(t)
		mockRepo := mocks.NewMockRoastRepository(t)

		mockRepo.On("GetProgress", mock.Anything, testRoastID).Return(emptyProgress(), nil).Once()
		mockChart.On("ComputeChart", mock.Anything, mock.AnythingOfType("models.BirthDetails")).
			Return(testChart(), nil).Once().Run(func(args mock.Arguments) {
			details := args.Get(1).(models.BirthDetails)
			assert.Equal(t, testName, details.Name)
			assert.Equal(t, 1995, details.Year)
			assert.Equal(t, "Europe/Moscow", details.Tz)
		})
		mockRepo.On("SaveProgress", mock.Anything, testRoastID, mock.AnythingOfType("*models.JobProgress")).
			Return(nil).Twice()
		mockAI.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(testRawOutput, testUsage(), nil).Once()
		mockRepo.On("SetReady", mock.Anything, testRoastID, mock.AnythingOfType("*models.Roast")).
			Return(nil).Once().Run(func(args mock.Arguments) {
			roast := args.Get(2).(*models.Roast)
			assert.Equal(t, models.RoastStatusReady, roast.Status)
			assert.Equal(t, "Leo", roast.SunSign)
			assert.Equal(t, "Virgo", roast.Rising)
			assert.Equal(t, "Your Sun is tired of you.", roast.Teaser)
			assert.Len(t, roast.Sections, 1)
			assert.Equal(t, "Sun Problems", roast.Sections[0].Title)
		})
		mockRepo.On("ClearProgress", mock.Anything, testRoastID).Return(nil).Once()

		handler := worker.NewTaskHandler(testConfig(), mockChart, mockAI, mockRepo, logger)
		err := handler.Handle(testPayload(), false)

		assert.NoError(t, err)
		// Финальная запись идет только через атомарный SetReady, без окна
		// Get->Save, в котором могла бы потеряться разблокировка
		mockRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		mockChart.AssertExpectations(t)
		mockAI.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Resume skips completed chart step", func(t *testing.T) {
		mockChart := mocks.NewMockChartClient(t)
		mockAI := mocks.NewMockAIClient(t)
		mockRepo := mocks.NewMockRoastRepository(t)

		progress := &models.JobProgress{
			Step:  models.JobStepChartComputed,
			Chart: testChart(),
		}

		mockRepo.On("GetProgress", mock.Anything, testRoastID).Return(progress, nil).Once()
		// ComputeChart НЕ должен вызываться повторно
		mockAI.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(testRawOutput, testUsage(), nil).Once()
		mockRepo.On("SaveProgress", mock.Anything, testRoastID, mock.Anything).Return(nil).Once()
		mockRepo.On("SetReady", mock.Anything, testRoastID, mock.Anything).Return(nil).Once()
		mockRepo.On("ClearProgress", mock.Anything, testRoastID).Return(nil).Once()

		handler := worker.NewTaskHandler(testConfig(), mockChart, mockAI, mockRepo, logger)
		assert.NoError(t, handler.Handle(testPayload(), true))

		mockChart.AssertNotCalled(t, "ComputeChart", mock.Anything, mock.Anything)
		mockAI.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Resume skips both external steps", func(t *testing.T) {
		mockChart := mocks.NewMockChartClient(t)
		mockAI := mocks.NewMockAIClient(t)
		mockRepo := mocks.NewMockRoastRepository(t)

		progress := &models.JobProgress{
			Step:    models.JobStepTextGenerated,
			Chart:   testChart(),
			RawText: testRawOutput,
		}

		mockRepo.On("GetProgress", mock.Anything, testRoastID).Return(progress, nil).Once()
		mockRepo.On("SetReady", mock.Anything, testRoastID, mock.Anything).Return(nil).Once()
		mockRepo.On("ClearProgress", mock.Anything, testRoastID).Return(nil).Once()

		handler := worker.NewTaskHandler(testConfig(), mockChart, mockAI, mockRepo, logger)
		assert.NoError(t, handler.Handle(testPayload(), true))

		mockChart.AssertNotCalled(t, "ComputeChart", mock.Anything, mock.Anything)
		mockAI.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Chart failure exhausts attempts and requeues on first delivery", func(t *testing.T) {
		mockChart := mocks.NewMockChartClient(t)
		mockAI := mocks.NewMockAIClient(t)
		mockRepo := mocks.NewMockRoastRepository(t)

		chartErr := errors.New("chart service unavailable")
		mockRepo.On("GetProgress", mock.Anything, testRoastID).Return(emptyProgress(), nil).Once()
		// AIMaxAttempts=2: два вызова, затем ошибка без компенсации
		mockChart.On("ComputeChart", mock.Anything, mock.Anything).Return(nil, chartErr).Twice()

		handler := worker.NewTaskHandler(testConfig(), mockChart, mockAI, mockRepo, logger)
		err := handler.Handle(testPayload(), false)

		assert.Error(t, err)
		assert.ErrorIs(t, err, chartErr)
		// Первая доставка: запись остается в generating, сообщение вернется в очередь
		mockRepo.AssertNotCalled(t, "SetError", mock.Anything, mock.Anything, mock.Anything)
		mockChart.AssertExpectations(t)
	})

	t.Run("AI failure on redelivery marks roast as error", func(t *testing.T) {
		mockChart := mocks.NewMockChartClient(t)
		mockAI := mocks.NewMockAIClient(t)
		mockRepo := mocks.NewMockRoastRepository(t)

		aiErr := errors.New("model overloaded")
		progress := &models.JobProgress{Step: models.JobStepChartComputed, Chart: testChart()}

		mockRepo.On("GetProgress", mock.Anything, testRoastID).Return(progress, nil).Once()
		mockAI.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", testUsage(), aiErr).Twice()
		mockRepo.On("SetError", mock.Anything, testRoastID, mock.AnythingOfType("string")).
			Return(nil).Once().Run(func(args mock.Arguments) {
			assert.NotEmpty(t, args.String(2))
		})
		mockRepo.On("ClearProgress", mock.Anything, testRoastID).Return(nil).Once()

		handler := worker.NewTaskHandler(testConfig(), mockChart, mockAI, mockRepo, logger)
		err := handler.Handle(testPayload(), true)

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "SetReady", mock.Anything, mock.Anything, mock.Anything)
		mockAI.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Expired record drops result without error", func(t *testing.T) {
		mockChart := mocks.NewMockChartClient(t)
		mockAI := mocks.NewMockAIClient(t)
		mockRepo := mocks.NewMockRoastRepository(t)

		progress := &models.JobProgress{
			Step:    models.JobStepTextGenerated,
			Chart:   testChart(),
			RawText: testRawOutput,
		}

		mockRepo.On("GetProgress", mock.Anything, testRoastID).Return(progress, nil).Once()
		mockRepo.On("SetReady", mock.Anything, testRoastID, mock.Anything).
			Return(repository.ErrRoastNotFound).Once()
		mockRepo.On("ClearProgress", mock.Anything, testRoastID).Return(nil).Once()

		handler := worker.NewTaskHandler(testConfig(), mockChart, mockAI, mockRepo, logger)
		err := handler.Handle(testPayload(), false)

		// Нечего сохранять и нечего повторять: ack без ошибки
		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "SetError", mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Retry succeeds on second attempt within same delivery", func(t *testing.T) {
		mockChart := mocks.NewMockChartClient(t)
		mockAI := mocks.NewMockAIClient(t)
		mockRepo := mocks.NewMockRoastRepository(t)

		mockRepo.On("GetProgress", mock.Anything, testRoastID).Return(emptyProgress(), nil).Once()
		mockChart.On("ComputeChart", mock.Anything, mock.Anything).
			Return(nil, errors.New("timeout")).Once()
		mockChart.On("ComputeChart", mock.Anything, mock.Anything).
			Return(testChart(), nil).Once()
		mockRepo.On("SaveProgress", mock.Anything, testRoastID, mock.Anything).Return(nil).Twice()
		mockAI.On("GenerateText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(testRawOutput, testUsage(), nil).Once()
		mockRepo.On("SetReady", mock.Anything, testRoastID, mock.Anything).Return(nil).Once()
		mockRepo.On("ClearProgress", mock.Anything, testRoastID).Return(nil).Once()

		handler := worker.NewTaskHandler(testConfig(), mockChart, mockAI, mockRepo, logger)
		assert.NoError(t, handler.Handle(testPayload(), false))
		mockChart.AssertExpectations(t)
	})
}
