package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/deliberation/voting-engine/domain/entities"
	domainerrors "quorum/contexts/deliberation/voting-engine/domain/errors"
	"quorum/contexts/deliberation/voting-engine/ports"

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

// SaveVote upserts by vote id. The unique index votes(phase_id, voter_id)
// backstops concurrent first-time casts; a lost race surfaces as ErrConflict
// (409 at the transport edge) and a resubmit lands on the update path.
func (r *Repository) SaveVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ballot", "decision", "score", "comment", "updated_at",
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("vote_repo_save_failed", create.Error,
			"vote_id", row.ID,
			"phase_id", row.PhaseID,
		)
	}
	return nil
}

func (r *Repository) GetVote(ctx context.Context, voteID string) (entities.Vote, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, domainerrors.ErrVoteNotFound
		}
		return entities.Vote{}, r.logError("vote_repo_get_failed", err, "vote_id", strings.TrimSpace(voteID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetVoteByIdentity(ctx context.Context, phaseID string, voterID string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("phase_id = ?", strings.TrimSpace(phaseID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("vote_repo_get_by_identity_failed", err,
			"phase_id", strings.TrimSpace(phaseID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotesByPhase(ctx context.Context, phaseID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("phase_id = ?", strings.TrimSpace(phaseID)).
		Order("created_at ASC, voter_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("vote_repo_list_failed", err,
			"phase_id", strings.TrimSpace(phaseID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// GetPhase reads the phases table projection owned by the phase service.
func (r *Repository) GetPhase(ctx context.Context, phaseID string) (ports.PhaseProjection, error) {
	var row phaseProjectionModel
	err := r.db.WithContext(ctx).
		Table("phases").
		Where("id = ?", strings.TrimSpace(phaseID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PhaseProjection{}, domainerrors.ErrPhaseNotFound
		}
		return ports.PhaseProjection{}, r.logError("vote_repo_get_phase_failed", err,
			"phase_id", strings.TrimSpace(phaseID),
		)
	}
	return row.toProjection(), nil
}

func (r *Repository) LatestClosedVotePhase(ctx context.Context, dossierID string) (ports.PhaseProjection, bool, error) {
	var row phaseProjectionModel
	err := r.db.WithContext(ctx).
		Table("phases").
		Where("dossier_id = ?", strings.TrimSpace(dossierID)).
		Where("kind = ?", "VOTE").
		Where("ended_at IS NOT NULL").
		Order("ended_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PhaseProjection{}, false, nil
		}
		return ports.PhaseProjection{}, false, r.logError("vote_repo_latest_closed_phase_failed", err,
			"dossier_id", strings.TrimSpace(dossierID),
		)
	}
	return row.toProjection(), true, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("vote_repo_append_outbox_marshal_failed", err,
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
		return r.logError("vote_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "deliberation/voting-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("vote repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type voteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	PhaseID   string    `gorm:"column:phase_id"`
	VoterID   string    `gorm:"column:voter_id"`
	Ballot    string    `gorm:"column:ballot"`
	Decision  string    `gorm:"column:decision"`
	Score     int       `gorm:"column:score"`
	Comment   string    `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		ID:        strings.TrimSpace(vote.VoteID),
		PhaseID:   strings.TrimSpace(vote.PhaseID),
		VoterID:   strings.TrimSpace(vote.VoterID),
		Ballot:    string(vote.Ballot),
		Decision:  string(vote.Decision),
		Score:     vote.Score,
		Comment:   vote.Comment,
		CreatedAt: vote.CreatedAt.UTC(),
		UpdatedAt: vote.UpdatedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:    m.ID,
		PhaseID:   m.PhaseID,
		VoterID:   m.VoterID,
		Ballot:    entities.Ballot(m.Ballot),
		Decision:  entities.Decision(m.Decision),
		Score:     m.Score,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type phaseProjectionModel struct {
	ID        string     `gorm:"column:id"`
	DossierID string     `gorm:"column:dossier_id"`
	Kind      string     `gorm:"column:kind"`
	Ballot    string     `gorm:"column:ballot"`
	EndedAt   *time.Time `gorm:"column:ended_at"`
}

func (m phaseProjectionModel) toProjection() ports.PhaseProjection {
	var endedAt *time.Time
	if m.EndedAt != nil {
		utc := m.EndedAt.UTC()
		endedAt = &utc
	}
	return ports.PhaseProjection{
		PhaseID:   m.ID,
		DossierID: m.DossierID,
		Kind:      m.Kind,
		Ballot:    m.Ballot,
		Active:    m.EndedAt == nil,
		EndedAt:   endedAt,
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
