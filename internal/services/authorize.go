package services

import (
	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/permissions"
)

// authorize runs an object-level policy check before a mutation.
func authorize(policy permissions.Policy, actor *models.User, method string, resource permissions.Resource) error {
	if policy.Allows(actor, method, resource) {
		return nil
	}
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	return apperrors.ErrPermissionDenied
}
