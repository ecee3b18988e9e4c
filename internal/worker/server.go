package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"affiliate-service/internal/consumers"
	"affiliate-service/internal/services"

	"github.com/hibiken/asynq"
)

type Worker struct {
	Processor *consumers.PayoutProcessor
}

func NewWorker(processor *consumers.PayoutProcessor) *Worker {
	return &Worker{
		Processor: processor,
	}
}

func (w *Worker) HandlePayoutDisbursement(ctx context.Context, t *asynq.Task) error {
	var p services.PayoutDisbursementDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessDisbursement(p)
}

func (w *Worker) HandleSettlementNotification(ctx context.Context, t *asynq.Task) error {
	var p services.SettlementNotificationDTO
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return w.Processor.ProcessNotification(p)
}

func StartWorker(redisOpt asynq.RedisClientOpt, processor *consumers.PayoutProcessor) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			// Specify how many concurrent workers to use
			Concurrency: 10,
			// Optionally specify multiple queues with different priority.
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(processor)
	mux := asynq.NewServeMux()

	mux.HandleFunc(services.TypePayoutDisbursement, worker.HandlePayoutDisbursement)
	mux.HandleFunc(services.TypeSettlementNotification, worker.HandleSettlementNotification)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
