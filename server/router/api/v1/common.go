package v1

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elijahnzeli1/smartnote-backend/ai"
	"github.com/elijahnzeli1/smartnote-backend/server/auth"
	"github.com/elijahnzeli1/smartnote-backend/store"
)

// errorResponse is the uniform error envelope of the API.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// respondError maps domain errors to HTTP statuses: validation → 400,
// bad credentials → 401, not found → 404, taken username → 409,
// AI unavailability → 503, everything else → 500.
func respondError(c echo.Context, err error) error {
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: "request validation failed",
			Details: validationErrs,
		})
	}

	var unavailable *ai.UnavailableError
	if errors.As(err, &unavailable) {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{
			Error:   "ai_unavailable",
			Message: unavailable.Message,
		})
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: "resource not found",
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorResponse{
			Error:   "invalid_credentials",
			Message: "invalid username or password",
		})
	case errors.Is(err, auth.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, errorResponse{
			Error:   "username_taken",
			Message: "username already taken",
		})
	}

	return c.JSON(http.StatusInternalServerError, errorResponse{
		Error:   "internal",
		Message: "internal server error",
	})
}

// findOwnedNote resolves a note UID scoped to the requesting user.
func (s *APIV1Service) findOwnedNote(c echo.Context, uid string) (*store.Note, error) {
	user := auth.UserFrom(c)
	return s.Store.GetNote(c.Request().Context(), &store.FindNote{
		UID:       &uid,
		CreatorID: &user.ID,
	})
}

// findOwnedChat resolves a chat UID scoped to the requesting user.
func (s *APIV1Service) findOwnedChat(c echo.Context, uid string) (*store.Chat, error) {
	user := auth.UserFrom(c)
	return s.Store.GetChat(c.Request().Context(), &store.FindChat{
		UID:       &uid,
		CreatorID: &user.ID,
	})
}
