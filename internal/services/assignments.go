package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"assetvault/internal/models"
	"assetvault/internal/utils/logger"
)

// AssignmentService manages per-user pinned-version overrides. An active
// pin makes ResolveForUser return that exact revision instead of the
// group's latest.
type AssignmentService struct {
	db       *gorm.DB
	resolver *VersionResolver
	log      *logger.Logger
}

func NewAssignmentService(db *gorm.DB, resolver *VersionResolver) *AssignmentService {
	return &AssignmentService{
		db:       db,
		resolver: resolver,
		log:      logger.New("assignment_service"),
	}
}

// AssignmentView is the contract for listing pins: the pin itself joined
// with the pinned revision's title and number plus the group's current
// latest number, so clients can render "Pinned V2, Latest V3".
type AssignmentView struct {
	ID             string                `json:"id"`
	UserID         string                `json:"userId"`
	AssetFileID    string                `json:"assetFileId"`
	VersionGroupID models.VersionGroupID `json:"versionGroupId"`
	Title          string                `json:"title"`
	PinnedVersion  int                   `json:"pinnedVersion"`
	LatestVersion  int                   `json:"latestVersion"`
	AssignedBy     string                `json:"assignedBy"`
	AssignedAt     string                `json:"assignedAt"`
}

// Assign creates or replaces the pin for (userID, groupID). A nil file id
// is a revert: the existing pin is deleted and the user falls back to
// latest-version resolution. The pair is exclusive, so any prior pin is
// removed inside the same transaction.
func (s *AssignmentService) Assign(ctx context.Context, actorID, userID string, assetFileID *string, groupID models.VersionGroupID) (*models.AssetFileAssignment, error) {
	if groupID.IsZero() {
		return nil, ErrInvalidVersionGroup
	}

	var pinned *models.AssetFile
	if assetFileID != nil {
		file, err := s.getFile(ctx, *assetFileID)
		if err != nil {
			return nil, err
		}
		if models.GroupOf(file) != groupID {
			return nil, ErrInvalidVersionGroup
		}
		pinned = file
	}

	var created *models.AssetFileAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND version_group_id = ?", userID, groupID).
			Delete(&models.AssetFileAssignment{}).Error; err != nil {
			return err
		}

		if pinned == nil {
			// Revert: default resolution applies again.
			return nil
		}

		assignment := &models.AssetFileAssignment{
			UserID:         userID,
			AssetFileID:    pinned.ID,
			VersionGroupID: groupID,
			AssignedBy:     actorID,
		}
		if err := tx.Create(assignment).Error; err != nil {
			return err
		}
		created = assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created != nil {
		s.log.Info("Pinned user %s to %s v%d", userID, pinned.Title, pinned.VersionNumber)
	} else {
		s.log.Info("Reverted pin for user %s on group %s", userID, groupID)
	}
	return created, nil
}

// ResolveForUser returns the revision the user should see for the group:
// the pinned file when an assignment exists, otherwise the latest
// non-archived revision. A pin whose revision was deleted is treated as
// absent rather than surfaced as an error.
func (s *AssignmentService) ResolveForUser(ctx context.Context, userID string, groupID models.VersionGroupID) (*models.AssetFile, error) {
	var assignment models.AssetFileAssignment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND version_group_id = ?", userID, groupID).
		First(&assignment).Error
	if err == nil {
		file, err := s.getFile(ctx, assignment.AssetFileID)
		if err == nil {
			return file, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// Dangling pin: fall through to default resolution.
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.resolver.Latest(ctx, groupID, false)
}

// ListAssignments returns all active pins for a user with the join fields
// the UI contract requires.
func (s *AssignmentService) ListAssignments(ctx context.Context, userID string) ([]AssignmentView, error) {
	var assignments []models.AssetFileAssignment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("assigned_at DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		file, err := s.getFile(ctx, a.AssetFileID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Pinned revision was deleted; skip rather than fail the
				// whole listing.
				continue
			}
			return nil, err
		}

		latestVersion := file.VersionNumber
		if latest, err := s.resolver.Latest(ctx, a.VersionGroupID, false); err == nil {
			latestVersion = latest.VersionNumber
		}

		views = append(views, AssignmentView{
			ID:             a.ID,
			UserID:         a.UserID,
			AssetFileID:    a.AssetFileID,
			VersionGroupID: a.VersionGroupID,
			Title:          file.Title,
			PinnedVersion:  file.VersionNumber,
			LatestVersion:  latestVersion,
			AssignedBy:     a.AssignedBy,
			AssignedAt:     a.AssignedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return views, nil
}

func (s *AssignmentService) getFile(ctx context.Context, id string) (*models.AssetFile, error) {
	var file models.AssetFile
	err := s.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}
