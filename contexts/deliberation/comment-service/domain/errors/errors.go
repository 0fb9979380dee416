package errors

import "errors"

var (
	ErrInvalidCommentInput = errors.New("invalid comment input")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrDossierNotFound     = errors.New("dossier not found")
	ErrPhaseNotFound       = errors.New("phase not found")
)
