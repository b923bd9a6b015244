package scheduler

import (
	"context"
	"testing"

	"prospect_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "default" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestEnqueueFollowUpEmail(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()}, logger.New("development"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	err = client.EnqueueFollowUpEmail(context.Background(), FollowUpEmailPayload{
		CallbackID:      "3a0a2c1e-0000-4000-8000-000000000001",
		EstablishmentID: "3a0a2c1e-0000-4000-8000-000000000002",
	})
	if err != nil {
		t.Fatalf("EnqueueFollowUpEmail: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	pending, err := rdb.LLen(context.Background(), "asynq:{default}:pending").Result()
	if err != nil {
		t.Fatalf("LLen: %v", err)
	}
	if pending != 1 {
		t.Fatalf("expected 1 pending task, got %d", pending)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}, logger.New("development")); err == nil {
		t.Fatal("expected error without redis url")
	}
}
