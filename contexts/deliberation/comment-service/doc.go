// Package commentservice implements the append-only comment thread attached
// to dossiers and phases.
//
// Comments never close: a phase that has ended stays commentable so committee
// members can annotate past deliberations. Ordering is by creation time with
// a monotonic position for insertion-stable ties.
package commentservice
