package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/deliberation/voting-engine/domain/entities"
	domainerrors "quorum/contexts/deliberation/voting-engine/domain/errors"
	"quorum/contexts/deliberation/voting-engine/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter behind the vote repository port. Uniqueness
// per (phase, voter) is enforced under the store mutex, mirroring the unique
// index of the postgres adapter.
type Store struct {
	mu sync.RWMutex

	votes     map[string]entities.Vote
	identity  map[string]string
	envelopes []ports.EventEnvelope
}

func NewStore(seed []entities.Vote) *Store {
	store := &Store{
		votes:    make(map[string]entities.Vote, len(seed)),
		identity: make(map[string]string, len(seed)),
	}
	for _, vote := range seed {
		store.votes[vote.VoteID] = vote
		store.identity[identityKey(vote.PhaseID, vote.VoterID)] = vote.VoteID
	}
	return store
}

func identityKey(phaseID string, voterID string) string {
	return strings.TrimSpace(phaseID) + "/" + strings.TrimSpace(voterID)
}

func (s *Store) SaveVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := identityKey(vote.PhaseID, vote.VoterID)
	if existingID, ok := s.identity[key]; ok && existingID != vote.VoteID {
		return domainerrors.ErrConflict
	}
	s.votes[vote.VoteID] = vote
	s.identity[key] = vote.VoteID
	return nil
}

func (s *Store) GetVote(_ context.Context, voteID string) (entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok {
		return entities.Vote{}, domainerrors.ErrVoteNotFound
	}
	return vote, nil
}

func (s *Store) GetVoteByIdentity(_ context.Context, phaseID string, voterID string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voteID, ok := s.identity[identityKey(phaseID, voterID)]
	if !ok {
		return entities.Vote{}, false, nil
	}
	return s.votes[voteID], true, nil
}

func (s *Store) ListVotesByPhase(_ context.Context, phaseID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.PhaseID == strings.TrimSpace(phaseID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].VoterID < items[j].VoterID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
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

// PhaseReaderStub serves fixed phase projections; for tests and in-memory
// wiring before the phase module is attached.
type PhaseReaderStub struct {
	mu     sync.RWMutex
	phases map[string]ports.PhaseProjection
}

func NewPhaseReaderStub(seed []ports.PhaseProjection) *PhaseReaderStub {
	phases := make(map[string]ports.PhaseProjection, len(seed))
	for _, phase := range seed {
		phases[phase.PhaseID] = phase
	}
	return &PhaseReaderStub{phases: phases}
}

func (r *PhaseReaderStub) Put(phase ports.PhaseProjection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases[phase.PhaseID] = phase
}

func (r *PhaseReaderStub) GetPhase(_ context.Context, phaseID string) (ports.PhaseProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	phase, ok := r.phases[strings.TrimSpace(phaseID)]
	if !ok {
		return ports.PhaseProjection{}, domainerrors.ErrPhaseNotFound
	}
	return phase, nil
}

func (r *PhaseReaderStub) LatestClosedVotePhase(_ context.Context, dossierID string) (ports.PhaseProjection, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest ports.PhaseProjection
	found := false
	for _, phase := range r.phases {
		if phase.DossierID != strings.TrimSpace(dossierID) || phase.Kind != "VOTE" || phase.EndedAt == nil {
			continue
		}
		if !found || phase.EndedAt.After(*latest.EndedAt) {
			latest = phase
			found = true
		}
	}
	return latest, found, nil
}
