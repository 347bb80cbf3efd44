package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"assetvault/internal/models"
	"assetvault/internal/utils/logger"
)

// AuditWriter records state-changing actions as a best-effort side
// channel. It never returns an error to the mutating operation: a failed
// audit write is logged, and the one expected failure mode (the acting
// user was deleted between token issuance and the write) is recovered by
// retrying once with a null actor and the original id kept in Details.
type AuditWriter struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditWriter(db *gorm.DB) *AuditWriter {
	return &AuditWriter{
		db:  db,
		log: logger.New("audit_writer"),
	}
}

// Log writes one audit entry. Safe to call from request handlers; the
// primary response never blocks on the outcome.
func (w *AuditWriter) Log(ctx context.Context, actorID, action, entity, entityID string, details map[string]interface{}) {
	entry := &models.AuditLog{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			w.log.Warn("Dropping unmarshalable audit details for %s %s: %v", action, entity, err)
		} else {
			entry.Details = payload
		}
	}

	err := w.db.WithContext(ctx).Create(entry).Error
	if err == nil {
		return
	}

	if !isForeignKeyViolation(err) {
		w.log.Warn("Failed to write audit entry %s %s/%s: %v", action, entity, entityID, err)
		return
	}

	// Dangling actor: keep the trail with a weak reference instead of
	// dropping the entry.
	fallback := map[string]interface{}{}
	for k, v := range details {
		fallback[k] = v
	}
	fallback["originalUserId"] = actorID
	fallback["note"] = "acting user record no longer exists"

	payload, marshalErr := json.Marshal(fallback)
	if marshalErr != nil {
		w.log.Warn("Failed to encode fallback audit details: %v", marshalErr)
		return
	}

	retry := &models.AuditLog{
		UserID:   nil,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  payload,
	}
	if err := w.db.WithContext(ctx).Create(retry).Error; err != nil {
		w.log.Warn("Failed to write null-actor audit entry %s %s/%s: %v", action, entity, entityID, err)
	}
}

// isForeignKeyViolation matches the referential-integrity error of the
// configured driver (Postgres class 23503, or sqlite's constraint text in
// tests).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint")
}
