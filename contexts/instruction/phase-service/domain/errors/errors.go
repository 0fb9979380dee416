package errors

import "errors"

var (
	ErrInvalidPhaseInput     = errors.New("invalid phase input")
	ErrPhaseNotFound         = errors.New("phase not found")
	ErrDossierNotFound       = errors.New("dossier not found")
	ErrDossierNotUnderReview = errors.New("dossier is not under review")
	ErrActivePhaseExists     = errors.New("dossier already has an active phase")
	ErrPhaseClosed           = errors.New("phase is already closed")
	ErrInvalidExtension      = errors.New("extension days must be positive")
)
