package errors

import "errors"

var (
	ErrInvalidUserID       = errors.New("invalid user id")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidPermission   = errors.New("invalid permission")
	ErrInvalidActorID      = errors.New("invalid actor id")
	ErrRoleAlreadyAssigned = errors.New("role already assigned")
	ErrRoleNotAssigned     = errors.New("role not assigned")
	ErrForbidden           = errors.New("forbidden")
)
