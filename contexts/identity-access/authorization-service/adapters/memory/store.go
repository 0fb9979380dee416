package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	"quorum/contexts/identity-access/authorization-service/domain/services"
	"quorum/contexts/identity-access/authorization-service/ports"

	"github.com/google/uuid"
)

type cachedPermissions struct {
	permissions []string
	expiresAt   time.Time
}

// Store is the in-memory adapter behind the authorization ports. The
// one-active-assignment-per-(user, role) invariant is enforced under the
// store mutex, mirroring the partial unique index of the postgres adapter.
type Store struct {
	mu sync.RWMutex

	assignments map[string]entities.RoleAssignment
	cache       map[string]cachedPermissions
	envelopes   []ports.EventEnvelope
}

func NewStore() *Store {
	return &Store{
		assignments: make(map[string]entities.RoleAssignment),
		cache:       make(map[string]cachedPermissions),
	}
}

func (s *Store) GrantRole(_ context.Context, input ports.GrantRoleInput) (entities.RoleAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assignments {
		if existing.UserID == input.UserID && existing.Role == input.Role && existing.Active() {
			return entities.RoleAssignment{}, domainerrors.ErrRoleAlreadyAssigned
		}
	}
	assignment := entities.RoleAssignment{
		AssignmentID: input.AssignmentID,
		UserID:       input.UserID,
		Role:         input.Role,
		AssignedBy:   input.ActorID,
		Reason:       input.Reason,
		AssignedAt:   input.AssignedAt.UTC(),
	}
	s.assignments[assignment.AssignmentID] = assignment
	return assignment, nil
}

func (s *Store) RevokeRole(_ context.Context, input ports.RevokeRoleInput) (entities.RoleAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.assignments {
		if existing.UserID == input.UserID && existing.Role == input.Role && existing.Active() {
			revokedAt := input.RevokedAt.UTC()
			existing.RevokedAt = &revokedAt
			s.assignments[id] = existing
			return existing, nil
		}
	}
	return entities.RoleAssignment{}, domainerrors.ErrRoleNotAssigned
}

func (s *Store) ListUserRoles(_ context.Context, userID string) ([]entities.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.RoleAssignment, 0)
	for _, assignment := range s.assignments {
		if assignment.UserID == strings.TrimSpace(userID) {
			items = append(items, assignment)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].AssignedAt.Before(items[j].AssignedAt)
	})
	return items, nil
}

func (s *Store) ListEffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	assignments, err := s.ListUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles := make([]entities.Role, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.Active() {
			roles = append(roles, assignment.Role)
		}
	}
	return services.PermissionsForRoles(roles), nil
}

func (s *Store) Get(_ context.Context, userID string, now time.Time) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[strings.TrimSpace(userID)]
	if !ok || now.After(entry.expiresAt) {
		return nil, false, nil
	}
	return append([]string(nil), entry.permissions...), true, nil
}

func (s *Store) Set(_ context.Context, userID string, permissions []string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[strings.TrimSpace(userID)] = cachedPermissions{
		permissions: append([]string(nil), permissions...),
		expiresAt:   expiresAt,
	}
	return nil
}

func (s *Store) Invalidate(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, strings.TrimSpace(userID))
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelopes = append(s.envelopes, envelope)
	return nil
}

// Envelopes is a test helper returning the appended envelopes in order.
func (s *Store) Envelopes() []ports.EventEnvelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.EventEnvelope(nil), s.envelopes...)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
