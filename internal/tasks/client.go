package tasks

import (
	"fmt"

	"assetvault/internal/utils/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskClient enqueues background work.
type TaskClient struct {
	client      *asynq.Client
	logger      *logger.Logger
	redisClient *redis.Client
}

func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	})

	return &TaskClient{
		client:      asynq.NewClient(redisOpt),
		redisClient: redisClient,
		logger:      logger.New("TASKS"),
	}
}

// EnqueueVersionRepair schedules one repair pass on the low queue, e.g.
// after an admin noticed a split group and does not want to wait for the
// nightly run.
func (c *TaskClient) EnqueueVersionRepair() error {
	task := asynq.NewTask(TaskTypeVersionRepair, nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutLong),
	)
	info, err := c.client.Enqueue(task)
	if err != nil {
		return fmt.Errorf("failed to enqueue version repair: %w", err)
	}
	c.logger.Info("enqueued version repair task %s", info.ID)
	return nil
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}
