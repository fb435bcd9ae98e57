package messaging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roast-server/internal/messaging"
)

func TestDeadLetterQueueFor(t *testing.T) {
	assert.Equal(t, "roast_generation_tasks_dlq",
		messaging.DeadLetterQueueFor(messaging.QueueRoastTasks))
	assert.Equal(t, "roast_unlock_events_dlq",
		messaging.DeadLetterQueueFor(messaging.QueueUnlockEvents))
}

func TestWorkQueuesListed(t *testing.T) {
	require.Contains(t, messaging.WorkQueues, messaging.QueueRoastTasks)
	require.Contains(t, messaging.WorkQueues, messaging.QueueUnlockEvents)
}

func TestQueueDeclareArgs(t *testing.T) {
	// Каждая рабочая очередь объявляется с маршрутом в собственный DLQ:
	// событие разблокировки, упавшее на повторной доставке, уходит в DLQ,
	// а не исчезает при отказе без requeue.
	for _, queue := range messaging.WorkQueues {
		t.Run(queue, func(t *testing.T) {
			args := messaging.QueueDeclareArgs(queue)
			assert.Equal(t, messaging.DeadLetterExchange, args["x-dead-letter-exchange"])
			assert.Equal(t, messaging.DeadLetterQueueFor(queue), args["x-dead-letter-routing-key"])
		})
	}
}
