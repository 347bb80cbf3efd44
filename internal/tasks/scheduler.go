package tasks

import (
	"fmt"

	"assetvault/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// Scheduler registers periodic maintenance tasks.
type Scheduler struct {
	scheduler  *asynq.Scheduler
	repairSpec string
	logger     *logger.Logger
}

func NewScheduler(redisAddr, username, password string, db int, repairSpec string, logger *logger.Logger) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
		&asynq.SchedulerOpts{},
	)

	return &Scheduler{
		scheduler:  scheduler,
		repairSpec: repairSpec,
		logger:     logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

func (s *Scheduler) registerTasks() error {
	// Version repair runs as an offline pass, never inline with user
	// requests.
	entryID, err := s.scheduler.Register(s.repairSpec,
		asynq.NewTask(TaskTypeVersionRepair, nil,
			asynq.Queue(QueueLow),
			asynq.MaxRetry(RetryDefault),
			asynq.Timeout(TimeoutLong),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to register version repair: %w", err)
	}

	s.logger.Info("registered version repair %s (%s)", entryID, s.repairSpec)
	return nil
}
