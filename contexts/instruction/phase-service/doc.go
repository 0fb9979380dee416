// Package phaseservice implements the phase manager inside the instruction
// context.
//
// The module sequences discussion and vote periods attached to a dossier:
// opening (with the single-active-phase invariant enforced at the store),
// target-date extension for reminder purposes, and termination. A reminder
// worker flags active phases past their target close date.
package phaseservice
