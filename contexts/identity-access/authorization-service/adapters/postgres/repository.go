package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/domain/services"
	"quorum/contexts/identity-access/authorization-service/ports"

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

// GrantRole relies on the partial unique index
// role_assignments(user_id, role) WHERE revoked_at IS NULL: a concurrent
// grant surfaces as a unique violation mapped to ErrRoleAlreadyAssigned.
func (r *Repository) GrantRole(ctx context.Context, input ports.GrantRoleInput) (entities.RoleAssignment, error) {
	row := assignmentModel{
		ID:         strings.TrimSpace(input.AssignmentID),
		UserID:     strings.TrimSpace(input.UserID),
		Role:       string(input.Role),
		AssignedBy: strings.TrimSpace(input.ActorID),
		Reason:     input.Reason,
		AssignedAt: input.AssignedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.RoleAssignment{}, domainerrors.ErrRoleAlreadyAssigned
		}
		return entities.RoleAssignment{}, r.logError("authz_repo_grant_failed", err,
			"user_id", row.UserID,
			"role", row.Role,
		)
	}
	return row.toEntity(), nil
}

// RevokeRole is guarded on revoked_at IS NULL; RowsAffected == 0 means no
// active assignment.
func (r *Repository) RevokeRole(ctx context.Context, input ports.RevokeRoleInput) (entities.RoleAssignment, error) {
	update := r.db.WithContext(ctx).
		Model(&assignmentModel{}).
		Where("user_id = ?", strings.TrimSpace(input.UserID)).
		Where("role = ?", string(input.Role)).
		Where("revoked_at IS NULL").
		Updates(map[string]any{
			"revoked_at":    input.RevokedAt.UTC(),
			"revoke_reason": input.Reason,
			"revoked_by":    strings.TrimSpace(input.ActorID),
		})
	if update.Error != nil {
		return entities.RoleAssignment{}, r.logError("authz_repo_revoke_failed", update.Error,
			"user_id", strings.TrimSpace(input.UserID),
			"role", string(input.Role),
		)
	}
	if update.RowsAffected == 0 {
		return entities.RoleAssignment{}, domainerrors.ErrRoleNotAssigned
	}
	var row assignmentModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(input.UserID)).
		Where("role = ?", string(input.Role)).
		Order("assigned_at DESC").
		First(&row).
		Error
	if err != nil {
		return entities.RoleAssignment{}, r.logError("authz_repo_revoke_readback_failed", err,
			"user_id", strings.TrimSpace(input.UserID),
			"role", string(input.Role),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUserRoles(ctx context.Context, userID string) ([]entities.RoleAssignment, error) {
	var rows []assignmentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("assigned_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("authz_repo_list_roles_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	items := make([]entities.RoleAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListEffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	var roleNames []string
	if err := r.db.WithContext(ctx).
		Model(&assignmentModel{}).
		Select("role").
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("revoked_at IS NULL").
		Find(&roleNames).Error; err != nil {
		return nil, r.logError("authz_repo_list_permissions_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	roles := make([]entities.Role, 0, len(roleNames))
	for _, name := range roleNames {
		if role, ok := entities.ParseRole(name); ok {
			roles = append(roles, role)
		}
	}
	return services.PermissionsForRoles(roles), nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("authz_repo_append_outbox_marshal_failed", err,
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
		return r.logError("authz_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "identity-access/authorization-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("authorization repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type assignmentModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	UserID       string     `gorm:"column:user_id"`
	Role         string     `gorm:"column:role"`
	AssignedBy   string     `gorm:"column:assigned_by"`
	Reason       string     `gorm:"column:reason"`
	AssignedAt   time.Time  `gorm:"column:assigned_at"`
	RevokedAt    *time.Time `gorm:"column:revoked_at"`
	RevokedBy    string     `gorm:"column:revoked_by"`
	RevokeReason string     `gorm:"column:revoke_reason"`
}

func (assignmentModel) TableName() string {
	return "role_assignments"
}

func (m assignmentModel) toEntity() entities.RoleAssignment {
	assignment := entities.RoleAssignment{
		AssignmentID: m.ID,
		UserID:       m.UserID,
		Role:         entities.Role(m.Role),
		AssignedBy:   m.AssignedBy,
		Reason:       m.Reason,
		AssignedAt:   m.AssignedAt.UTC(),
	}
	if m.RevokedAt != nil {
		utc := m.RevokedAt.UTC()
		assignment.RevokedAt = &utc
	}
	return assignment
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
