// Package dossierservice implements the dossier state machine inside the
// instruction context.
//
// The module owns the dossier status lifecycle (submission, completeness
// review, collegial review, final decision), the transition audit trail, and
// workflow event production through the outbox-backed relay worker. It keeps
// business rules in application/domain layers and isolates infrastructure
// concerns behind ports and adapters.
package dossierservice
