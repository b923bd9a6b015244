// Package scheduler hands callback follow-up mail off to an asynq task queue
// so delivery never runs on the request path. The queue only carries the
// dispatch moment; whether mail actually goes out is re-decided by the worker
// against the then-current callback and establishment state.
package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"prospect_backend/internal/events"
	"prospect_backend/platform/config"
	"prospect_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
	log    *logger.Logger
}

func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
		log:    log,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueFollowUpEmail queues the confirmation mail for a freshly scheduled
// callback.
func (c *Client) EnqueueFollowUpEmail(ctx context.Context, payload FollowUpEmailPayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewFollowUpEmailTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// RegisterHandlers subscribes the client to callback scheduling events.
func (c *Client) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.CallbackScheduled{}.EventName(), c)
}

func (c *Client) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.CallbackScheduled)
	if !ok {
		return fmt.Errorf("scheduler: unexpected event %s", event.EventName())
	}

	err := c.EnqueueFollowUpEmail(ctx, FollowUpEmailPayload{
		CallbackID:      e.CallbackID.String(),
		EstablishmentID: e.EstablishmentID.String(),
	})
	if err != nil {
		c.log.CollaboratorWarning("scheduler", "enqueue follow-up email", err)
	}
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

var _ events.Handler = (*Client)(nil)
