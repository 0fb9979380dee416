// Package votingengine implements committee voting inside the deliberation
// context.
//
// The module owns vote collection during active VOTE phases (upsert per
// voter), result aggregation for both ballot models (categorical AVIS and
// 0-20 NOTE scoring), and the named decision policies used for dossier
// auto-finalization. It keeps business rules in application/domain layers and
// isolates infrastructure concerns behind ports and adapters.
package votingengine
