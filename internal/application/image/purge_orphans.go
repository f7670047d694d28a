package image

import (
	"context"
	"fmt"
	"log/slog"
)

// PurgeOrphansUseCase deletes images whose owner no longer exists
type PurgeOrphansUseCase struct {
	repo   Repository
	owners OwnerChecker
	logger *slog.Logger
}

// NewPurgeOrphansUseCase creates a new PurgeOrphansUseCase
func NewPurgeOrphansUseCase(repo Repository, owners OwnerChecker, logger *slog.Logger) *PurgeOrphansUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurgeOrphansUseCase{repo: repo, owners: owners, logger: logger}
}

// Execute checks every image owner once. A failure for one owner is logged
// and does not stop the run.
func (uc *PurgeOrphansUseCase) Execute(ctx context.Context) (PurgeResult, error) {
	ownerIDs, err := uc.repo.DistinctOwners(ctx)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("failed to list image owners: %w", err)
	}

	var result PurgeResult
	for _, ownerID := range ownerIDs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.OwnersChecked++

		exists, existsErr := uc.owners.Exists(ctx, ownerID)
		if existsErr != nil {
			uc.logger.WarnContext(ctx, "failed to check image owner",
				slog.String("user_id", ownerID.String()),
				slog.String("error", existsErr.Error()),
			)
			continue
		}
		if exists {
			continue
		}

		result.OrphanOwners++
		deleted, delErr := uc.repo.DeleteByOwner(ctx, ownerID)
		if delErr != nil {
			uc.logger.WarnContext(ctx, "failed to delete orphaned images",
				slog.String("user_id", ownerID.String()),
				slog.String("error", delErr.Error()),
			)
			continue
		}
		result.ImagesDeleted += deleted
	}

	return result, nil
}
