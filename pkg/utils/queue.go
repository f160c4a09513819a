package utils

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Queue struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Work    *amqp.Queue
	Result  *amqp.Queue
}

// Connect to RabbitMQ and declare the work and result queues.
// Has to be closed (`q.Close()`)
func ConnectQueue(url, work, result string) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	q := &Queue{Conn: conn, Channel: ch}
	workQueue, err := DeclareQueue(work, ch)
	if err != nil {
		q.Close()
		return nil, fmt.Errorf("failed to declare %q queue: %w", work, err)
	}
	q.Work = &workQueue
	resultQueue, err := DeclareQueue(result, ch)
	if err != nil {
		q.Close()
		return nil, fmt.Errorf("failed to declare %q queue: %w", result, err)
	}
	q.Result = &resultQueue
	return q, nil
}

func (q *Queue) Close() {
	if q.Channel != nil {
		q.Channel.Close()
	}
	if q.Conn != nil {
		q.Conn.Close()
	}
}

func DeclareQueue(name string, ch *amqp.Channel) (queue amqp.Queue, err error) {
	queue, err = ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return
	}
	// One job at a time per consumer
	if err = ch.Qos(1, 0, false); err != nil {
		return
	}
	return
}

// Reject a delivery that cannot be processed.
// The message is dropped: a job that failed once fails again
func FailOnNack(role string, d amqp.Delivery, err error) {
	ErrorLog(role, "Could not process message", "err", err)
	if err = d.Nack(false, false); err != nil {
		FailOnError("Could not NACK to message queue", err)
	}
}
