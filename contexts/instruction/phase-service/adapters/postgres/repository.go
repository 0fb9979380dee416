package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/instruction/phase-service/domain/entities"
	domainerrors "quorum/contexts/instruction/phase-service/domain/errors"
	"quorum/contexts/instruction/phase-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
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

// CreatePhase relies on the partial unique index
// phases(dossier_id) WHERE ended_at IS NULL: a concurrent open for the same
// dossier surfaces as a unique violation mapped to ErrActivePhaseExists.
func (r *Repository) CreatePhase(ctx context.Context, phase entities.Phase) error {
	row := phaseModelFromEntity(phase)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrActivePhaseExists
		}
		return r.logError("phase_repo_create_failed", err,
			"phase_id", strings.TrimSpace(phase.PhaseID),
			"dossier_id", strings.TrimSpace(phase.DossierID),
		)
	}
	return nil
}

func (r *Repository) GetPhase(ctx context.Context, phaseID string) (entities.Phase, error) {
	var row phaseModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(phaseID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Phase{}, domainerrors.ErrPhaseNotFound
		}
		return entities.Phase{}, r.logError("phase_repo_get_failed", err, "phase_id", strings.TrimSpace(phaseID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetActivePhase(ctx context.Context, dossierID string) (entities.Phase, bool, error) {
	var row phaseModel
	err := r.db.WithContext(ctx).
		Where("dossier_id = ?", strings.TrimSpace(dossierID)).
		Where("ended_at IS NULL").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Phase{}, false, nil
		}
		return entities.Phase{}, false, r.logError("phase_repo_get_active_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListPhases(ctx context.Context, dossierID string) ([]entities.Phase, error) {
	var rows []phaseModel
	if err := r.db.WithContext(ctx).
		Where("dossier_id = ?", strings.TrimSpace(dossierID)).
		Order("started_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("phase_repo_list_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	items := make([]entities.Phase, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// SetTargetClose is guarded on ended_at IS NULL so extensions race cleanly
// with concurrent closes.
func (r *Repository) SetTargetClose(ctx context.Context, phaseID string, target time.Time, updatedAt time.Time) error {
	update := r.db.WithContext(ctx).
		Model(&phaseModel{}).
		Where("id = ?", strings.TrimSpace(phaseID)).
		Where("ended_at IS NULL").
		Updates(map[string]any{
			"target_close_at":  target.UTC(),
			"reminder_sent_at": nil,
			"updated_at":       updatedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("phase_repo_set_target_failed", update.Error,
			"phase_id", strings.TrimSpace(phaseID),
		)
	}
	if update.RowsAffected == 0 {
		return r.closedOrMissing(ctx, phaseID)
	}
	return nil
}

// ClosePhase performs the guarded update; RowsAffected == 0 distinguishes a
// lost close race (ErrPhaseClosed) from a missing phase.
func (r *Repository) ClosePhase(ctx context.Context, phaseID string, endedAt time.Time) (entities.Phase, error) {
	update := r.db.WithContext(ctx).
		Model(&phaseModel{}).
		Where("id = ?", strings.TrimSpace(phaseID)).
		Where("ended_at IS NULL").
		Updates(map[string]any{
			"ended_at":   endedAt.UTC(),
			"updated_at": endedAt.UTC(),
		})
	if update.Error != nil {
		return entities.Phase{}, r.logError("phase_repo_close_failed", update.Error,
			"phase_id", strings.TrimSpace(phaseID),
		)
	}
	if update.RowsAffected == 0 {
		return entities.Phase{}, r.closedOrMissing(ctx, phaseID)
	}
	return r.GetPhase(ctx, phaseID)
}

func (r *Repository) ListOverduePhases(ctx context.Context, asOf time.Time) ([]entities.Phase, error) {
	var rows []phaseModel
	if err := r.db.WithContext(ctx).
		Where("ended_at IS NULL").
		Where("target_close_at IS NOT NULL").
		Where("target_close_at < ?", asOf.UTC()).
		Where("reminder_sent_at IS NULL").
		Order("started_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("phase_repo_list_overdue_failed", err)
	}
	items := make([]entities.Phase, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MarkReminderSent(ctx context.Context, phaseID string, sentAt time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&phaseModel{}).
		Where("id = ?", strings.TrimSpace(phaseID)).
		Update("reminder_sent_at", sentAt.UTC()).Error; err != nil {
		return r.logError("phase_repo_mark_reminder_failed", err,
			"phase_id", strings.TrimSpace(phaseID),
		)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("phase_repo_append_outbox_marshal_failed", err,
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
		return r.logError("phase_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

// GetDossierStatus reads the dossiers table projection owned by the dossier
// service.
func (r *Repository) GetDossierStatus(ctx context.Context, dossierID string) (string, error) {
	var status string
	err := r.db.WithContext(ctx).
		Table("dossiers").
		Select("status").
		Where("id = ?", strings.TrimSpace(dossierID)).
		Take(&status).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domainerrors.ErrDossierNotFound
		}
		return "", r.logError("phase_repo_get_dossier_status_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	return status, nil
}

func (r *Repository) closedOrMissing(ctx context.Context, phaseID string) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&phaseModel{}).
		Where("id = ?", strings.TrimSpace(phaseID)).
		Count(&count).Error; err != nil {
		return r.logError("phase_repo_close_recheck_failed", err,
			"phase_id", strings.TrimSpace(phaseID),
		)
	}
	if count == 0 {
		return domainerrors.ErrPhaseNotFound
	}
	return domainerrors.ErrPhaseClosed
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "instruction/phase-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("phase repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type phaseModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	DossierID      string     `gorm:"column:dossier_id"`
	Kind           string     `gorm:"column:kind"`
	Ballot         string     `gorm:"column:ballot"`
	Description    string     `gorm:"column:description"`
	StartedAt      time.Time  `gorm:"column:started_at"`
	EndedAt        *time.Time `gorm:"column:ended_at"`
	TargetCloseAt  *time.Time `gorm:"column:target_close_at"`
	ReminderSentAt *time.Time `gorm:"column:reminder_sent_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (phaseModel) TableName() string {
	return "phases"
}

func phaseModelFromEntity(phase entities.Phase) phaseModel {
	return phaseModel{
		ID:             strings.TrimSpace(phase.PhaseID),
		DossierID:      strings.TrimSpace(phase.DossierID),
		Kind:           string(phase.Kind),
		Ballot:         string(phase.Ballot),
		Description:    phase.Description,
		StartedAt:      phase.StartedAt.UTC(),
		EndedAt:        utcOrNil(phase.EndedAt),
		TargetCloseAt:  utcOrNil(phase.TargetCloseAt),
		ReminderSentAt: utcOrNil(phase.ReminderSentAt),
		CreatedAt:      phase.CreatedAt.UTC(),
		UpdatedAt:      phase.UpdatedAt.UTC(),
	}
}

func (m phaseModel) toEntity() entities.Phase {
	return entities.Phase{
		PhaseID:        m.ID,
		DossierID:      m.DossierID,
		Kind:           entities.Kind(m.Kind),
		Ballot:         entities.Ballot(m.Ballot),
		Description:    m.Description,
		StartedAt:      m.StartedAt.UTC(),
		EndedAt:        utcOrNil(m.EndedAt),
		TargetCloseAt:  utcOrNil(m.TargetCloseAt),
		ReminderSentAt: utcOrNil(m.ReminderSentAt),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func utcOrNil(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
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
