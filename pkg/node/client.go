package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/lioia/topic-hits/pkg/utils"
	gonanoid "github.com/matoous/go-nanoid/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Submit publishes job on the work queue and waits for its result on an
// exclusive reply queue. A job without ID gets a fresh one
func Submit(ctx context.Context, ch *amqp.Channel, workQueue string, job Job) (*JobResult, error) {
	if job.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return nil, err
		}
		job.ID = id
	}
	reply, err := ch.QueueDeclare(
		"",    // name: generated by the broker
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare reply queue: %w", err)
	}
	msgs, err := ch.Consume(
		reply.Name, // queue
		"",         // consumer
		true,       // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume reply queue: %w", err)
	}

	data, err := EncodeJob(job)
	if err != nil {
		return nil, err
	}
	err = ch.PublishWithContext(ctx,
		"",        // exchange
		workQueue, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   ContentType,
			CorrelationId: job.ID,
			ReplyTo:       reply.Name,
			Body:          data,
		})
	if err != nil {
		return nil, fmt.Errorf("publish job: %w", err)
	}
	utils.NodeLog("client", "Job submitted", "job", job.ID, "queue", workQueue)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil, errors.New("reply queue closed")
			}
			if d.CorrelationId != job.ID {
				continue
			}
			result, err := DecodeResult(d.Body)
			if err != nil {
				return nil, err
			}
			if result.Error != "" {
				return result, errors.New(result.Error)
			}
			return result, nil
		}
	}
}
