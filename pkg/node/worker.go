package node

import (
	"context"
	"errors"

	"github.com/lioia/topic-hits/pkg/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Publisher is the part of *amqp.Channel the worker publishes results with
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Worker struct {
	Node        *Node
	Channel     Publisher
	ResultQueue string         // Used when a job has no ReplyTo
	Health      *health.Server // Optional
}

// Run handles deliveries until ctx is done or the deliveries channel is
// closed. The health service reports SERVING while jobs are consumed
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	w.setServing(healthpb.HealthCheckResponse_SERVING)
	defer w.setServing(healthpb.HealthCheckResponse_NOT_SERVING)
	utils.NodeLog("worker", "Waiting for jobs")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) setServing(status healthpb.HealthCheckResponse_ServingStatus) {
	if w.Health != nil {
		w.Health.SetServingStatus("", status)
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	job, err := DecodeJob(d.Body)
	if err != nil {
		utils.FailOnNack("worker", d, err)
		return
	}
	if job.ID == "" {
		job.ID = d.CorrelationId
	}

	result, err := w.Node.Compute(ctx, job)
	if err != nil && ctx.Err() != nil {
		// Interrupted, another worker picks the job up
		utils.WarnLog("worker", "Job interrupted, requeueing", "job", job.ID, "err", err)
		if err := d.Nack(false, true); err != nil {
			utils.ErrorLog("worker", "Could not NACK job", "job", job.ID, "err", err)
		}
		return
	}
	if err != nil {
		// The requester still gets an answer
		utils.ErrorLog("worker", "Job failed", "job", job.ID, "err", err)
		result = &JobResult{ID: job.ID, Error: err.Error()}
	}
	data, err := EncodeResult(result)
	if err != nil {
		utils.FailOnNack("worker", d, err)
		return
	}

	key := d.ReplyTo
	if key == "" {
		key = w.ResultQueue
	}
	err = w.Channel.PublishWithContext(ctx,
		"",    // exchange
		key,   // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   ContentType,
			CorrelationId: job.ID,
			Body:          data,
		})
	if err != nil {
		utils.FailOnNack("worker", d, err)
		return
	}
	if err := d.Ack(false); err != nil {
		utils.ErrorLog("worker", "Could not ACK job", "job", job.ID, "err", err)
		return
	}
	utils.NodeLog("worker", "Job completed", "job", job.ID, "state", result.State, "iterations", result.Iterations)
}
