package services

import (
	"context"

	"gorm.io/gorm"

	"assetvault/internal/models"
	"assetvault/internal/utils/logger"
)

// RepairService merges version groups that were incorrectly split: two
// uploads of the same (folder, title) document that ended up under
// different group identifiers. Runs as an offline maintenance pass; it is
// idempotent and deterministic, so re-running it on a repaired database
// changes nothing.
type RepairService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepairService(db *gorm.DB) *RepairService {
	return &RepairService{
		db:  db,
		log: logger.New("version_repair"),
	}
}

// RepairReport summarizes one maintenance pass.
type RepairReport struct {
	GroupsMerged         int `json:"groupsMerged"`
	FilesRenumbered      int `json:"filesRenumbered"`
	AssignmentsRewritten int `json:"assignmentsRewritten"`
}

type splitPair struct {
	FolderID string
	Title    string
}

// Run finds every split document and repairs it. Each document's rewrite
// happens inside its own transaction so a half-renumbered group is never
// observable.
func (s *RepairService) Run(ctx context.Context) (*RepairReport, error) {
	pairs, err := s.findSplitPairs(ctx)
	if err != nil {
		return nil, err
	}

	report := &RepairReport{}
	for _, pair := range pairs {
		if err := s.repairPair(ctx, pair, report); err != nil {
			return report, s.log.Error("failed to repair %q in folder %s", err, pair.Title, pair.FolderID)
		}
		report.GroupsMerged++
	}

	if report.GroupsMerged > 0 {
		s.log.Success("Merged %d split groups (%d files renumbered, %d pins rewritten)",
			report.GroupsMerged, report.FilesRenumbered, report.AssignmentsRewritten)
	}
	return report, nil
}

// findSplitPairs returns (folder, title) pairs whose non-deleted rows span
// more than one distinct group id. A row without an explicit group counts
// as its own group.
func (s *RepairService) findSplitPairs(ctx context.Context) ([]splitPair, error) {
	var pairs []splitPair
	err := s.db.WithContext(ctx).Raw(`
		SELECT folder_id, title
		FROM asset_files
		WHERE is_deleted = ?
		GROUP BY folder_id, title
		HAVING COUNT(DISTINCT COALESCE(NULLIF(version_group_id, ''), id)) > 1`,
		false,
	).Scan(&pairs).Error
	return pairs, err
}

func (s *RepairService) repairPair(ctx context.Context, pair splitPair, report *RepairReport) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var files []models.AssetFile
		if err := tx.
			Where("folder_id = ? AND title = ? AND is_deleted = ?", pair.FolderID, pair.Title, false).
			Order("created_at ASC, id ASC").
			Find(&files).Error; err != nil {
			return err
		}
		if len(files) < 2 {
			return nil
		}

		// Oldest row wins: its group id becomes canonical, so repeated
		// runs pick the same master and history reads chronologically.
		master := models.GroupOf(&files[0])

		obsolete := make([]string, 0, len(files))
		seen := map[models.VersionGroupID]bool{master: true}
		for i := range files {
			g := models.GroupOf(&files[i])
			if !seen[g] {
				seen[g] = true
				obsolete = append(obsolete, g.String())
			}
		}

		for i := range files {
			wantNumber := i + 1
			if files[i].VersionGroupID == master && files[i].VersionNumber == wantNumber {
				continue
			}
			if err := tx.Model(&models.AssetFile{}).
				Where("id = ?", files[i].ID).
				Updates(map[string]interface{}{
					"version_group_id": master,
					"version_number":   wantNumber,
				}).Error; err != nil {
				return err
			}
			report.FilesRenumbered++
		}

		if len(obsolete) == 0 {
			return nil
		}

		return s.rewriteAssignments(tx, master, obsolete, report)
	})
}

// rewriteAssignments repoints pins from the merged-away groups at the
// canonical one, preserving which user had which revision pinned. When a
// user ends up with pins from more than one merged group, the most recent
// pin survives so the (user, group) pair stays exclusive. Superseded pins
// are deleted before any survivor is repointed: a user holding pins on
// both the master group and a merged-away one would otherwise collide
// with the unique (user, group) index mid-rewrite.
func (s *RepairService) rewriteAssignments(tx *gorm.DB, master models.VersionGroupID, obsolete []string, report *RepairReport) error {
	affected := append([]string{master.String()}, obsolete...)

	var assignments []models.AssetFileAssignment
	if err := tx.
		Where("version_group_id IN ?", affected).
		Order("assigned_at DESC, id DESC").
		Find(&assignments).Error; err != nil {
		return err
	}

	survivors := make([]models.AssetFileAssignment, 0, len(assignments))
	seen := map[string]bool{}
	for _, a := range assignments {
		if seen[a.UserID] {
			if err := tx.Delete(&models.AssetFileAssignment{}, "id = ?", a.ID).Error; err != nil {
				return err
			}
			continue
		}
		seen[a.UserID] = true
		survivors = append(survivors, a)
	}

	for _, a := range survivors {
		if a.VersionGroupID == master {
			continue
		}
		if err := tx.Model(&models.AssetFileAssignment{}).
			Where("id = ?", a.ID).
			Update("version_group_id", master).Error; err != nil {
			return err
		}
		report.AssignmentsRewritten++
	}
	return nil
}
