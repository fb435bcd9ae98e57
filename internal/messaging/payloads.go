package messaging

import "github.com/rabbitmq/amqp091-go"

// Имена очередей и exchange'ей. Обе рабочие очереди durable и связаны с общим
// dead-letter exchange: сообщение, исчерпавшее повторную доставку, уходит в
// DLQ своей очереди, а не теряется молча. Разблокировка после оплаты - деньги
// клиента, ее потеря недопустима так же, как потеря задачи генерации.
const (
	// QueueRoastTasks - очередь задач генерации роастов.
	QueueRoastTasks = "roast_generation_tasks"
	// QueueUnlockEvents - очередь событий разблокировки после оплаты.
	QueueUnlockEvents = "roast_unlock_events"

	// DeadLetterExchange - общий DLX для рабочих очередей.
	DeadLetterExchange = "roast_dlx"
	// deadLetterSuffix добавляется к имени рабочей очереди, образуя имя ее DLQ
	// и ключ маршрутизации в DLX.
	deadLetterSuffix = "_dlq"
)

// WorkQueues перечисляет рабочие очереди; каждая получает собственный DLQ.
var WorkQueues = []string{QueueRoastTasks, QueueUnlockEvents}

// DeadLetterQueueFor возвращает имя DLQ (оно же ключ маршрутизации) для
// рабочей очереди.
func DeadLetterQueueFor(queue string) string {
	return queue + deadLetterSuffix
}

// QueueDeclareArgs возвращает аргументы объявления рабочей очереди: маршрут
// мертвых сообщений в ее DLQ через общий DLX. Издатель и потребитель обязаны
// объявлять очередь с одинаковыми аргументами, иначе брокер отвергнет
// повторное объявление.
func QueueDeclareArgs(queue string) amqp091.Table {
	return amqp091.Table{
		"x-dead-letter-exchange":    DeadLetterExchange,
		"x-dead-letter-routing-key": DeadLetterQueueFor(queue),
	}
}

// RoastTaskPayload - структура сообщения для задачи генерации роаста.
// Дата/время рождения передаются разложенными на целые, координаты - float,
// таймзона - именем зоны IANA.
type RoastTaskPayload struct {
	RoastID string  `json:"roastId"`
	Name    string  `json:"name"`
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Day     int     `json:"day"`
	Hour    int     `json:"hour"`
	Minute  int     `json:"minute"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Tz      string  `json:"tz"`
}

// UnlockPayload - структура события разблокировки записи после оплаты.
type UnlockPayload struct {
	RoastID string `json:"roastId"`
}
