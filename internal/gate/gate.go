// Package gate holds the authorization checks applied before persona
// mutations. Each check is a pure predicate returning a uniform Result so
// handlers can compose them and abort at the first failure.
package gate

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"personastudio/internal/domain"
)

// Machine-readable denial codes surfaced in error bodies.
const (
	CodeUserIDRequired      = "USER_ID_REQUIRED"
	CodePremiumRequired     = "PREMIUM_REQUIRED"
	CodePersonaNotFound     = "PERSONA_NOT_FOUND"
	CodeNotPersonaOwner     = "NOT_PERSONA_OWNER"
	CodePersonaLookupFailed = "PERSONA_LOOKUP_FAILED"
)

// Result is the outcome of a single check. On denial, Status and Body are
// written to the transport verbatim.
type Result struct {
	OK     bool
	Status int
	Body   map[string]any
}

// Check is a deferred gating predicate, composable via First.
type Check func() Result

func pass() Result {
	return Result{OK: true}
}

// Deny builds a failing result with the standard {error, code} body.
func Deny(status int, code, message string) Result {
	return Result{
		Status: status,
		Body:   map[string]any{"error": message, "code": code},
	}
}

// First runs checks in order and returns the first failure, or a passing
// result when every check succeeds.
func First(checks ...Check) Result {
	for _, check := range checks {
		if res := check(); !res.OK {
			return res
		}
	}
	return pass()
}

// RequireUserID fails when the caller carries no identifiable user id.
func RequireUserID(user domain.UserRef) Result {
	if strings.TrimSpace(user.ID) == "" {
		return Deny(http.StatusBadRequest, CodeUserIDRequired, "user id is required")
	}
	return pass()
}

// RequireVoiceTrainingAccess fails unless the user's plan or premium flag
// marks them premium. Either signal alone is sufficient.
func RequireVoiceTrainingAccess(user domain.UserRef) Result {
	if !user.Premium() {
		return Deny(http.StatusForbidden, CodePremiumRequired, "voice training requires a premium plan")
	}
	return pass()
}

// PersonaFinder loads a persona record for ownership checks.
type PersonaFinder interface {
	FindByID(ctx context.Context, id string) (*domain.Persona, error)
}

// RequirePersonaAccess loads the persona and fails when it is absent or
// owned by someone other than the caller.
func RequirePersonaAccess(ctx context.Context, finder PersonaFinder, user domain.UserRef, personaID string) Result {
	persona, err := finder.FindByID(ctx, personaID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Deny(http.StatusNotFound, CodePersonaNotFound, "persona not found")
		}
		return Deny(http.StatusInternalServerError, CodePersonaLookupFailed, "failed to load persona")
	}
	if persona.UserID != user.ID {
		return Deny(http.StatusForbidden, CodeNotPersonaOwner, "persona belongs to another user")
	}
	return pass()
}
