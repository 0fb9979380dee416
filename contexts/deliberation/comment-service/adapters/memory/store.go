package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/deliberation/comment-service/domain/entities"
	domainerrors "quorum/contexts/deliberation/comment-service/domain/errors"
	"quorum/contexts/deliberation/comment-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter behind the comment repository port.
// Positions are assigned from a store-wide counter under the mutex.
type Store struct {
	mu sync.RWMutex

	comments     map[string]entities.Comment
	nextPosition int64
	envelopes    []ports.EventEnvelope
}

func NewStore(seed []entities.Comment) *Store {
	store := &Store{comments: make(map[string]entities.Comment, len(seed))}
	for _, comment := range seed {
		store.comments[comment.CommentID] = comment
		if comment.Position >= store.nextPosition {
			store.nextPosition = comment.Position + 1
		}
	}
	return store
}

func (s *Store) AppendComment(_ context.Context, comment entities.Comment) (entities.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.Position = s.nextPosition
	s.nextPosition++
	s.comments[comment.CommentID] = comment
	return comment, nil
}

func (s *Store) ListDossierComments(_ context.Context, dossierID string) ([]entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Comment, 0)
	for _, comment := range s.comments {
		if comment.DossierID == strings.TrimSpace(dossierID) && comment.PhaseID == "" {
			items = append(items, comment)
		}
	}
	sortComments(items)
	return items, nil
}

func (s *Store) ListPhaseComments(_ context.Context, phaseID string) ([]entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Comment, 0)
	for _, comment := range s.comments {
		if comment.PhaseID == strings.TrimSpace(phaseID) {
			items = append(items, comment)
		}
	}
	sortComments(items)
	return items, nil
}

func (s *Store) CountComments(_ context.Context, dossierID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, comment := range s.comments {
		if comment.DossierID == strings.TrimSpace(dossierID) {
			count++
		}
	}
	return count, nil
}

func sortComments(items []entities.Comment) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].Position < items[j].Position
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
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
type DossierStateFunc func(ctx context.Context, dossierID string) (bool, error)

func (f DossierStateFunc) DossierExists(ctx context.Context, dossierID string) (bool, error) {
	return f(ctx, dossierID)
}

// AllDossiersExist reports every dossier as present; for tests.
func AllDossiersExist() DossierStateFunc {
	return func(context.Context, string) (bool, error) {
		return true, nil
	}
}

// PhaseStateStub maps phase ids to dossier ids; for tests and in-memory
// wiring before the phase module is attached.
type PhaseStateStub struct {
	mu       sync.RWMutex
	dossiers map[string]string
}

func NewPhaseStateStub(phaseToDossier map[string]string) *PhaseStateStub {
	dossiers := make(map[string]string, len(phaseToDossier))
	for phaseID, dossierID := range phaseToDossier {
		dossiers[phaseID] = dossierID
	}
	return &PhaseStateStub{dossiers: dossiers}
}

func (p *PhaseStateStub) Put(phaseID string, dossierID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dossiers[phaseID] = dossierID
}

func (p *PhaseStateStub) GetPhaseDossier(_ context.Context, phaseID string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	dossierID, ok := p.dossiers[strings.TrimSpace(phaseID)]
	if !ok {
		return "", domainerrors.ErrPhaseNotFound
	}
	return dossierID, nil
}
