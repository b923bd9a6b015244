package scheduler

import (
	"context"
	"fmt"

	"prospect_backend/platform/config"
	"prospect_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	dispatcher *FollowUpDispatcher
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, dispatcher *FollowUpDispatcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		dispatcher: dispatcher,
		log:        log,
	}

	mux.HandleFunc(TaskFollowUpEmail, w.handleFollowUpEmail)

	return w, nil
}

func (w *Worker) handleFollowUpEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpEmailPayload(task)
	if err != nil {
		return err
	}

	callbackID, err := uuid.Parse(payload.CallbackID)
	if err != nil {
		return err
	}

	establishmentID, err := uuid.Parse(payload.EstablishmentID)
	if err != nil {
		return err
	}

	return w.dispatcher.Dispatch(ctx, callbackID, establishmentID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
