// Package authz holds the ownership checks shared by every mutating operation.
package authz

import "skillshare-backend/internal/apperr"

// RequireAuthenticated fails with Unauthorized when no actor was resolved
func RequireAuthenticated(actorID string) error {
	if actorID == "" {
		return apperr.New(apperr.Unauthorized, "authentication required")
	}
	return nil
}

// RequireOwner fails with Forbidden unless the actor owns the resource
func RequireOwner(actorID, ownerID string) error {
	if err := RequireAuthenticated(actorID); err != nil {
		return err
	}
	if actorID != ownerID {
		return apperr.New(apperr.Forbidden, "not allowed to modify this resource")
	}
	return nil
}

// RequireAnyOwner passes when the actor owns at least one of the given roles.
func RequireAnyOwner(actorID string, ownerIDs ...string) error {
	if err := RequireAuthenticated(actorID); err != nil {
		return err
	}
	for _, ownerID := range ownerIDs {
		if RequireOwner(actorID, ownerID) == nil {
			return nil
		}
	}
	return apperr.New(apperr.Forbidden, "not allowed to modify this resource")
}
