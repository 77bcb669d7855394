package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
)

// bindAndValidate decodes the JSON body into req and runs the validator,
// answering 400 itself when either fails.
func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return false
	}
	return true
}

// allowedAreas returns nil for admins (no restriction) and the caller's
// assigned areas otherwise, never nil for a non-admin.
func allowedAreas(c *gin.Context) ([]string, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	if claims.IsAdmin() {
		return nil, true
	}
	if claims.Areas == nil {
		return []string{}, true
	}
	return claims.Areas, true
}

// scopeAreas narrows the requested areas to the allowed ones. A nil allowed
// list means unrestricted; an empty request means every allowed area.
func scopeAreas(requested, allowed []string) []string {
	if allowed == nil {
		if len(requested) == 0 {
			return nil
		}
		return requested
	}
	if len(requested) == 0 {
		return allowed
	}
	permitted := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		permitted[a] = true
	}
	out := []string{}
	for _, a := range requested {
		if permitted[a] {
			out = append(out, a)
		}
	}
	return out
}
