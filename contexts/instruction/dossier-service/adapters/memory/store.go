package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/instruction/dossier-service/domain/entities"
	domainerrors "quorum/contexts/instruction/dossier-service/domain/errors"
	"quorum/contexts/instruction/dossier-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter behind the dossier repository and outbox
// ports. Used by unit tests and local wiring.
type Store struct {
	mu sync.RWMutex

	dossiers    map[string]entities.Dossier
	transitions map[string][]entities.StatusTransition
	outbox      map[string]outboxRecord
	outboxOrder []string
}

func NewStore(seed []entities.Dossier) *Store {
	dossiers := make(map[string]entities.Dossier, len(seed))
	for _, dossier := range seed {
		dossiers[dossier.DossierID] = dossier
	}
	return &Store{
		dossiers:    dossiers,
		transitions: make(map[string][]entities.StatusTransition),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) SaveDossier(_ context.Context, dossier entities.Dossier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dossiers[strings.TrimSpace(dossier.DossierID)] = dossier
	return nil
}

func (s *Store) TransitionStatus(_ context.Context, dossierID string, from, to entities.Status, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(dossierID)
	dossier, ok := s.dossiers[id]
	if !ok {
		return domainerrors.ErrDossierNotFound
	}
	if dossier.Status != from {
		return domainerrors.ErrInvalidTransition
	}
	dossier.Status = to
	dossier.UpdatedAt = updatedAt.UTC()
	s.dossiers[id] = dossier
	return nil
}

func (s *Store) GetDossier(_ context.Context, dossierID string) (entities.Dossier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dossier, ok := s.dossiers[strings.TrimSpace(dossierID)]
	if !ok {
		return entities.Dossier{}, domainerrors.ErrDossierNotFound
	}
	return dossier, nil
}

func (s *Store) ListDossiers(_ context.Context, status entities.Status) ([]entities.Dossier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Dossier, 0, len(s.dossiers))
	for _, dossier := range s.dossiers {
		if status != "" && dossier.Status != status {
			continue
		}
		items = append(items, dossier)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) AppendTransition(_ context.Context, transition entities.StatusTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dossierID := strings.TrimSpace(transition.DossierID)
	s.transitions[dossierID] = append(s.transitions[dossierID], transition)
	return nil
}

func (s *Store) ListTransitions(_ context.Context, dossierID string) ([]entities.StatusTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.transitions[strings.TrimSpace(dossierID)]
	return append([]entities.StatusTransition(nil), items...), nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.outbox[envelope.EventID]; exists {
		return nil
	}
	s.outbox[envelope.EventID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     envelope.EventID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt.UTC(),
		},
	}
	s.outboxOrder = append(s.outboxOrder, envelope.EventID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		record := s.outbox[id]
		if record.published {
			continue
		}
		items = append(items, record.message)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[outboxID]
	if !ok {
		return nil
	}
	record.published = true
	s.outbox[outboxID] = record
	return nil
}

// PendingOutboxCount is a test helper.
func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, record := range s.outbox {
		if !record.published {
			count++
		}
	}
	return count
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// PhaseStateFunc adapts a function to the PhaseState port.
type PhaseStateFunc func(ctx context.Context, dossierID string) (bool, error)

func (f PhaseStateFunc) HasActivePhase(ctx context.Context, dossierID string) (bool, error) {
	return f(ctx, dossierID)
}

// NoActivePhases is the default phase gate for wiring without a phase module.
var NoActivePhases = PhaseStateFunc(func(context.Context, string) (bool, error) {
	return false, nil
})
