package job

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pulseflow-board-api/internal/repository"
)

// SweepJob removes share grants whose board or user no longer exists. Boards
// cascade their shares on delete, but accounts removed in the identity
// directory leave grants behind; this job reclaims them.
type SweepJob struct {
	shareRepo repository.ShareRepository
	logger    *zap.Logger
}

// NewSweepJob creates a new SweepJob instance
func NewSweepJob(shareRepo repository.ShareRepository, logger *zap.Logger) *SweepJob {
	return &SweepJob{
		shareRepo: shareRepo,
		logger:    logger,
	}
}

// Run executes one sweep. Implements cron.Job.
func (j *SweepJob) Run() {
	ctx := context.Background()

	j.logger.Info("Starting orphaned share sweep")

	orphans, err := j.shareRepo.FindOrphaned(ctx)
	if err != nil {
		j.logger.Error("Failed to find orphaned shares",
			zap.Error(err),
		)
		return
	}

	if len(orphans) == 0 {
		j.logger.Info("No orphaned shares found")
		return
	}

	ids := make([]uuid.UUID, 0, len(orphans))
	for _, share := range orphans {
		ids = append(ids, share.ID)
	}

	if err := j.shareRepo.DeleteBatch(ctx, ids); err != nil {
		j.logger.Error("Failed to delete orphaned shares",
			zap.Int("count", len(ids)),
			zap.Error(err),
		)
		return
	}

	j.logger.Info("Orphaned share sweep completed",
		zap.Int("deleted", len(ids)),
	)
}
