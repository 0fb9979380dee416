package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/instruction/phase-service/domain/entities"
	domainerrors "quorum/contexts/instruction/phase-service/domain/errors"
	"quorum/contexts/instruction/phase-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter behind the phase repository port. The
// single-active-phase invariant is enforced under the store mutex, mirroring
// the partial unique index of the postgres adapter.
type Store struct {
	mu sync.RWMutex

	phases    map[string]entities.Phase
	envelopes []ports.EventEnvelope
}

func NewStore(seed []entities.Phase) *Store {
	phases := make(map[string]entities.Phase, len(seed))
	for _, phase := range seed {
		phases[phase.PhaseID] = phase
	}
	return &Store{phases: phases}
}

func (s *Store) CreatePhase(_ context.Context, phase entities.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.phases {
		if existing.DossierID == phase.DossierID && existing.Active() {
			return domainerrors.ErrActivePhaseExists
		}
	}
	s.phases[strings.TrimSpace(phase.PhaseID)] = phase
	return nil
}

func (s *Store) GetPhase(_ context.Context, phaseID string) (entities.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phase, ok := s.phases[strings.TrimSpace(phaseID)]
	if !ok {
		return entities.Phase{}, domainerrors.ErrPhaseNotFound
	}
	return phase, nil
}

func (s *Store) GetActivePhase(_ context.Context, dossierID string) (entities.Phase, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, phase := range s.phases {
		if phase.DossierID == strings.TrimSpace(dossierID) && phase.Active() {
			return phase, true, nil
		}
	}
	return entities.Phase{}, false, nil
}

func (s *Store) ListPhases(_ context.Context, dossierID string) ([]entities.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Phase, 0)
	for _, phase := range s.phases {
		if phase.DossierID == strings.TrimSpace(dossierID) {
			items = append(items, phase)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartedAt.Before(items[j].StartedAt)
	})
	return items, nil
}

func (s *Store) SetTargetClose(_ context.Context, phaseID string, target time.Time, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	phase, ok := s.phases[strings.TrimSpace(phaseID)]
	if !ok {
		return domainerrors.ErrPhaseNotFound
	}
	if !phase.Active() {
		return domainerrors.ErrPhaseClosed
	}
	targetUTC := target.UTC()
	phase.TargetCloseAt = &targetUTC
	phase.ReminderSentAt = nil
	phase.UpdatedAt = updatedAt.UTC()
	s.phases[phase.PhaseID] = phase
	return nil
}

func (s *Store) ClosePhase(_ context.Context, phaseID string, endedAt time.Time) (entities.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	phase, ok := s.phases[strings.TrimSpace(phaseID)]
	if !ok {
		return entities.Phase{}, domainerrors.ErrPhaseNotFound
	}
	if !phase.Active() {
		return entities.Phase{}, domainerrors.ErrPhaseClosed
	}
	endedUTC := endedAt.UTC()
	phase.EndedAt = &endedUTC
	phase.UpdatedAt = endedUTC
	s.phases[phase.PhaseID] = phase
	return phase, nil
}

func (s *Store) ListOverduePhases(_ context.Context, asOf time.Time) ([]entities.Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Phase, 0)
	for _, phase := range s.phases {
		if !phase.Active() || phase.TargetCloseAt == nil || phase.ReminderSentAt != nil {
			continue
		}
		if phase.TargetCloseAt.UTC().Before(asOf.UTC()) {
			items = append(items, phase)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartedAt.Before(items[j].StartedAt)
	})
	return items, nil
}

func (s *Store) MarkReminderSent(_ context.Context, phaseID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	phase, ok := s.phases[strings.TrimSpace(phaseID)]
	if !ok {
		return domainerrors.ErrPhaseNotFound
	}
	sentUTC := sentAt.UTC()
	phase.ReminderSentAt = &sentUTC
	s.phases[phase.PhaseID] = phase
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

// DossierStateFunc adapts a function to the DossierState port.
type DossierStateFunc func(ctx context.Context, dossierID string) (string, error)

func (f DossierStateFunc) GetDossierStatus(ctx context.Context, dossierID string) (string, error) {
	return f(ctx, dossierID)
}

// StaticDossierStatus reports every dossier in the given status; for tests.
func StaticDossierStatus(status string) DossierStateFunc {
	return func(context.Context, string) (string, error) {
		return status, nil
	}
}
