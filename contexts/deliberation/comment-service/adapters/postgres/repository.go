package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/deliberation/comment-service/domain/entities"
	domainerrors "quorum/contexts/deliberation/comment-service/domain/errors"
	"quorum/contexts/deliberation/comment-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

// AppendComment lets the comments.position bigserial column assign the
// monotonic position, then reads the stored row back.
func (r *Repository) AppendComment(ctx context.Context, comment entities.Comment) (entities.Comment, error) {
	row := commentModelFromEntity(comment)
	if err := r.db.WithContext(ctx).Omit("position").Create(&row).Error; err != nil {
		return entities.Comment{}, r.logError("comment_repo_append_failed", err,
			"comment_id", row.ID,
			"dossier_id", row.DossierID,
		)
	}
	var stored commentModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", row.ID).
		First(&stored).
		Error; err != nil {
		return entities.Comment{}, r.logError("comment_repo_readback_failed", err, "comment_id", row.ID)
	}
	return stored.toEntity(), nil
}

func (r *Repository) ListDossierComments(ctx context.Context, dossierID string) ([]entities.Comment, error) {
	var rows []commentModel
	if err := r.db.WithContext(ctx).
		Where("dossier_id = ?", strings.TrimSpace(dossierID)).
		Where("phase_id = ''").
		Order("created_at ASC, position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("comment_repo_list_dossier_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	return toEntities(rows), nil
}

func (r *Repository) ListPhaseComments(ctx context.Context, phaseID string) ([]entities.Comment, error) {
	var rows []commentModel
	if err := r.db.WithContext(ctx).
		Where("phase_id = ?", strings.TrimSpace(phaseID)).
		Order("created_at ASC, position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("comment_repo_list_phase_failed", err,
			"phase_id", strings.TrimSpace(phaseID),
		)
	}
	return toEntities(rows), nil
}

func (r *Repository) CountComments(ctx context.Context, dossierID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&commentModel{}).
		Where("dossier_id = ?", strings.TrimSpace(dossierID)).
		Count(&count).Error; err != nil {
		return 0, r.logError("comment_repo_count_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	return count, nil
}

// DossierExists reads the dossiers table projection owned by the dossier
// service.
func (r *Repository) DossierExists(ctx context.Context, dossierID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("dossiers").
		Where("id = ?", strings.TrimSpace(dossierID)).
		Count(&count).Error; err != nil {
		return false, r.logError("comment_repo_dossier_exists_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	return count > 0, nil
}

// GetPhaseDossier reads the phases table projection owned by the phase
// service. Closed phases resolve like active ones.
func (r *Repository) GetPhaseDossier(ctx context.Context, phaseID string) (string, error) {
	var dossierID string
	err := r.db.WithContext(ctx).
		Table("phases").
		Select("dossier_id").
		Where("id = ?", strings.TrimSpace(phaseID)).
		Take(&dossierID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domainerrors.ErrPhaseNotFound
		}
		return "", r.logError("comment_repo_get_phase_dossier_failed", err,
			"phase_id", strings.TrimSpace(phaseID),
		)
	}
	return dossierID, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("comment_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       "pending",
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
		return r.logError("comment_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "deliberation/comment-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("comment repository operation failed", fields...)
	return err
}

func toEntities(rows []commentModel) []entities.Comment {
	items := make([]entities.Comment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type commentModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	DossierID string    `gorm:"column:dossier_id"`
	PhaseID   string    `gorm:"column:phase_id"`
	AuthorID  string    `gorm:"column:author_id"`
	Body      string    `gorm:"column:body"`
	Position  int64     `gorm:"column:position"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (commentModel) TableName() string {
	return "comments"
}

func commentModelFromEntity(comment entities.Comment) commentModel {
	return commentModel{
		ID:        strings.TrimSpace(comment.CommentID),
		DossierID: strings.TrimSpace(comment.DossierID),
		PhaseID:   strings.TrimSpace(comment.PhaseID),
		AuthorID:  strings.TrimSpace(comment.AuthorID),
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt.UTC(),
	}
}

func (m commentModel) toEntity() entities.Comment {
	return entities.Comment{
		CommentID: m.ID,
		DossierID: m.DossierID,
		PhaseID:   m.PhaseID,
		AuthorID:  m.AuthorID,
		Body:      m.Body,
		Position:  m.Position,
		CreatedAt: m.CreatedAt.UTC(),
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
