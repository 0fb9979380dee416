package services

import "quorum/contexts/identity-access/authorization-service/domain/entities"

// Workflow permissions. Route gating and actor checks use these constants;
// free-form permission strings are rejected by GrantsPermission returning
// false.
const (
	PermDossierCreer       = "dossier.creer"
	PermDossierConsulter   = "dossier.consulter"
	PermDossierCompletude  = "dossier.completude"
	PermDossierInstruction = "dossier.instruction"
	PermDossierDecision    = "dossier.decision"
	PermPhaseOuvrir        = "phase.ouvrir"
	PermPhaseProlonger     = "phase.prolonger"
	PermPhaseTerminer      = "phase.terminer"
	PermPhaseConsulter     = "phase.consulter"
	PermVoteExprimer       = "vote.exprimer"
	PermVoteResultats      = "vote.resultats"
	PermCommentaireAjouter = "commentaire.ajouter"
	PermCommentaireLister  = "commentaire.lister"
)

// rolePermissions is the closed permission table. The intake reviewer runs
// completeness checks, the coordinator drives instruction and decisions, and
// committee members vote and comment. Read access is shared.
var rolePermissions = map[entities.Role][]string{
	entities.RoleAgentInstruction: {
		PermDossierCreer,
		PermDossierConsulter,
		PermDossierCompletude,
		PermPhaseConsulter,
		PermCommentaireLister,
	},
	entities.RoleCoordinateur: {
		PermDossierConsulter,
		PermDossierInstruction,
		PermDossierDecision,
		PermPhaseOuvrir,
		PermPhaseProlonger,
		PermPhaseTerminer,
		PermPhaseConsulter,
		PermVoteResultats,
		PermCommentaireAjouter,
		PermCommentaireLister,
	},
	entities.RoleMembreComite: {
		PermDossierConsulter,
		PermPhaseConsulter,
		PermVoteExprimer,
		PermVoteResultats,
		PermCommentaireAjouter,
		PermCommentaireLister,
	},
}

// RolePermissions returns the permission bundle of one role.
func RolePermissions(role entities.Role) []string {
	return append([]string(nil), rolePermissions[role]...)
}

// PermissionsForRoles flattens and deduplicates the bundles of the given
// roles.
func PermissionsForRoles(roles []entities.Role) []string {
	seen := make(map[string]struct{})
	permissions := make([]string, 0)
	for _, role := range roles {
		for _, permission := range rolePermissions[role] {
			if _, ok := seen[permission]; ok {
				continue
			}
			seen[permission] = struct{}{}
			permissions = append(permissions, permission)
		}
	}
	return permissions
}

// GrantsPermission reports whether the effective permission set contains the
// requested permission.
func GrantsPermission(permissions []string, permission string) bool {
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}
