package tasks

import (
	"context"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"assetvault/internal/services"
	"assetvault/internal/utils/logger"
)

// TaskHandler processes background tasks.
type TaskHandler struct {
	db     *gorm.DB
	repair *services.RepairService
	logger *logger.Logger
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{
		db:     db,
		repair: services.NewRepairService(db),
		logger: logger.New("task_handler"),
	}
}

// HandleVersionRepair runs the split-group maintenance pass. The pass is
// idempotent, so asynq retrying after a partial failure is safe.
func (h *TaskHandler) HandleVersionRepair(ctx context.Context, t *asynq.Task) error {
	report, err := h.repair.Run(ctx)
	if err != nil {
		return err
	}
	h.logger.Info("version repair done: merged=%d renumbered=%d pins=%d",
		report.GroupsMerged, report.FilesRenumbered, report.AssignmentsRewritten)
	return nil
}
