package worker_test

import (
	"errors"
	"testing"

	"roast-server/internal/messaging"
	"roast-server/internal/mocks"
	"roast-server/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestUnlockHandler_Handle(t *testing.T) {
	logger := zap.NewNop()

	t.Run("Marks roast as paid", func(t *testing.T) {
		mockRepo := mocks.NewMockRoastRepository(t)
		mockRepo.On("MarkPaid", mock.Anything, testRoastID).Return(nil).Once()

		handler := worker.NewUnlockHandler(mockRepo, logger)
		err := handler.Handle(messaging.UnlockPayload{RoastID: testRoastID})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository error propagates for redelivery", func(t *testing.T) {
		mockRepo := mocks.NewMockRoastRepository(t)
		repoErr := errors.New("redis connection refused")
		mockRepo.On("MarkPaid", mock.Anything, testRoastID).Return(repoErr).Once()

		handler := worker.NewUnlockHandler(mockRepo, logger)
		err := handler.Handle(messaging.UnlockPayload{RoastID: testRoastID})

		assert.ErrorIs(t, err, repoErr)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Empty roast id is dropped without repository call", func(t *testing.T) {
		mockRepo := mocks.NewMockRoastRepository(t)

		handler := worker.NewUnlockHandler(mockRepo, logger)
		err := handler.Handle(messaging.UnlockPayload{})

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
	})
}
