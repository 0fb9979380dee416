package errors

import "errors"

var (
	ErrInvalidDossierInput  = errors.New("invalid dossier input")
	ErrDossierNotFound      = errors.New("dossier not found")
	ErrInvalidTransition    = errors.New("dossier status transition not allowed")
	ErrActivePhaseOpen      = errors.New("dossier still has an active phase")
	ErrDecisionNotDerivable = errors.New("no decision derivable from vote results")
)
