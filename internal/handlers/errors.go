package handlers

import (
	"errors"

	"github.com/dimitrije/capsule-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

// conflicts are reported as 409 with a machine-readable code.
var conflicts = []struct {
	err  error
	code string
}{
	{services.ErrAlreadyFull, "ALREADY_FULL"},
	{services.ErrAlreadyMember, "ALREADY_MEMBER"},
	{services.ErrInvalidTransition, "INVALID_TRANSITION"},
	{services.ErrCapsuleNotActive, "CAPSULE_NOT_ACTIVE"},
	{services.ErrConcurrencyConflict, "CONCURRENCY_CONFLICT"},
	{services.ErrNotApproved, "NOT_APPROVED"},
}

// writeError maps a service error to its HTTP response. Unknown errors become
// a 500 with the fallback message.
func writeError(c *drift.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		c.Unauthorized("not authenticated")
		return
	case errors.Is(err, services.ErrNotAMember):
		c.Forbidden("not a participant of this capsule")
		return
	case errors.Is(err, services.ErrInvalidCode):
		c.NotFound("invite code not found")
		return
	case errors.Is(err, services.ErrNotFound):
		c.NotFound(err.Error())
		return
	case errors.Is(err, services.ErrInvalidInput):
		c.BadRequest("invalid request")
		return
	case errors.Is(err, services.ErrStorageNotConfigured):
		_ = c.JSON(503, map[string]string{
			"code":    "STORAGE_NOT_CONFIGURED",
			"message": err.Error(),
		})
		return
	}

	for _, conflict := range conflicts {
		if errors.Is(err, conflict.err) {
			_ = c.JSON(409, map[string]string{
				"code":    conflict.code,
				"message": err.Error(),
			})
			return
		}
	}

	c.InternalServerError(fallback)
}
