package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/instruction/dossier-service/domain/entities"
	domainerrors "quorum/contexts/instruction/dossier-service/domain/errors"
	"quorum/contexts/instruction/dossier-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveDossier(ctx context.Context, dossier entities.Dossier) error {
	row := dossierModelFromEntity(dossier)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":     row.Status,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("dossier_repo_save_failed", create.Error,
			"dossier_id", strings.TrimSpace(dossier.DossierID),
		)
	}
	return nil
}

// TransitionStatus performs the guarded status update; RowsAffected == 0
// distinguishes a lost transition race (ErrInvalidTransition) from a missing
// dossier.
func (r *Repository) TransitionStatus(ctx context.Context, dossierID string, from, to entities.Status, updatedAt time.Time) error {
	update := r.db.WithContext(ctx).
		Model(&dossierModel{}).
		Where("id = ?", strings.TrimSpace(dossierID)).
		Where("status = ?", string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("dossier_repo_transition_failed", update.Error,
			"dossier_id", strings.TrimSpace(dossierID),
			"from_status", string(from),
			"to_status", string(to),
		)
	}
	if update.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&dossierModel{}).
			Where("id = ?", strings.TrimSpace(dossierID)).
			Count(&count).Error; err != nil {
			return r.logError("dossier_repo_transition_recheck_failed", err,
				"dossier_id", strings.TrimSpace(dossierID),
			)
		}
		if count == 0 {
			return domainerrors.ErrDossierNotFound
		}
		return domainerrors.ErrInvalidTransition
	}
	return nil
}

func (r *Repository) GetDossier(ctx context.Context, dossierID string) (entities.Dossier, error) {
	var row dossierModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(dossierID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Dossier{}, domainerrors.ErrDossierNotFound
		}
		return entities.Dossier{}, r.logError("dossier_repo_get_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListDossiers(ctx context.Context, status entities.Status) ([]entities.Dossier, error) {
	tx := r.db.WithContext(ctx).Model(&dossierModel{})
	if status != "" {
		tx = tx.Where("status = ?", string(status))
	}
	var rows []dossierModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("dossier_repo_list_failed", err, "status", string(status))
	}
	items := make([]entities.Dossier, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendTransition(ctx context.Context, transition entities.StatusTransition) error {
	row := transitionModelFromEntity(transition)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("dossier_repo_append_transition_failed", err,
			"dossier_id", strings.TrimSpace(transition.DossierID),
			"to_status", string(transition.ToStatus),
		)
	}
	return nil
}

func (r *Repository) ListTransitions(ctx context.Context, dossierID string) ([]entities.StatusTransition, error) {
	var rows []transitionModel
	if err := r.db.WithContext(ctx).
		Where("dossier_id = ?", strings.TrimSpace(dossierID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("dossier_repo_list_transitions_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	items := make([]entities.StatusTransition, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// HasActivePhase reads the phases table projection owned by the phase
// service. The partial unique index guarantees at most one matching row.
func (r *Repository) HasActivePhase(ctx context.Context, dossierID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("phases").
		Where("dossier_id = ?", strings.TrimSpace(dossierID)).
		Where("ended_at IS NULL").
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("dossier_repo_active_phase_check_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	return count > 0, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("dossier_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("dossier_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("dossier_repo_outbox_list_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Where("status = ?", outboxStatusPending).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		}).Error; err != nil {
		return r.logError("dossier_repo_outbox_publish_failed", err,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "instruction/dossier-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("dossier repository operation failed", fields...)
	return err
}

type dossierModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Reference      string    `gorm:"column:reference"`
	Status         string    `gorm:"column:status"`
	RequestTypeID  string    `gorm:"column:request_type_id"`
	SubmitterName  string    `gorm:"column:submitter_name"`
	SubmitterEmail string    `gorm:"column:submitter_email"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (dossierModel) TableName() string {
	return "dossiers"
}

func dossierModelFromEntity(dossier entities.Dossier) dossierModel {
	return dossierModel{
		ID:             strings.TrimSpace(dossier.DossierID),
		Reference:      strings.TrimSpace(dossier.Reference),
		Status:         string(dossier.Status),
		RequestTypeID:  strings.TrimSpace(dossier.RequestTypeID),
		SubmitterName:  strings.TrimSpace(dossier.SubmitterName),
		SubmitterEmail: strings.TrimSpace(dossier.SubmitterEmail),
		CreatedAt:      dossier.CreatedAt.UTC(),
		UpdatedAt:      dossier.UpdatedAt.UTC(),
	}
}

func (m dossierModel) toEntity() entities.Dossier {
	return entities.Dossier{
		DossierID:      m.ID,
		Reference:      m.Reference,
		Status:         entities.Status(m.Status),
		RequestTypeID:  m.RequestTypeID,
		SubmitterName:  m.SubmitterName,
		SubmitterEmail: m.SubmitterEmail,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type transitionModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	DossierID  string    `gorm:"column:dossier_id"`
	FromStatus string    `gorm:"column:from_status"`
	ToStatus   string    `gorm:"column:to_status"`
	ActorID    string    `gorm:"column:actor_id"`
	Comment    string    `gorm:"column:comment"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (transitionModel) TableName() string {
	return "dossier_status_transitions"
}

func transitionModelFromEntity(transition entities.StatusTransition) transitionModel {
	return transitionModel{
		ID:         strings.TrimSpace(transition.TransitionID),
		DossierID:  strings.TrimSpace(transition.DossierID),
		FromStatus: string(transition.FromStatus),
		ToStatus:   string(transition.ToStatus),
		ActorID:    strings.TrimSpace(transition.ActorID),
		Comment:    transition.Comment,
		CreatedAt:  transition.CreatedAt.UTC(),
	}
}

func (m transitionModel) toEntity() entities.StatusTransition {
	return entities.StatusTransition{
		TransitionID: m.ID,
		DossierID:    m.DossierID,
		FromStatus:   entities.Status(m.FromStatus),
		ToStatus:     entities.Status(m.ToStatus),
		ActorID:      m.ActorID,
		Comment:      m.Comment,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "workflow_outbox"
}
