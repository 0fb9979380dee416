package entities

import "time"

// Comment is one append-only thread entry. PhaseID is empty for
// dossier-scoped comments. Position is monotonic per store and makes
// same-timestamp ordering insertion-stable.
type Comment struct {
	CommentID string
	DossierID string
	PhaseID   string
	AuthorID  string
	Body      string
	Position  int64
	CreatedAt time.Time
}
