package v1

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/elijahnzeli1/smartnote-backend/server/auth"
	"github.com/elijahnzeli1/smartnote-backend/store"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r credentialsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
	)
}

type userResponse struct {
	ID        int32  `json:"id"`
	Username  string `json:"username"`
	CreatedTs int64  `json:"created_ts"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(user *store.User) userResponse {
	return userResponse{ID: user.ID, Username: user.Username, CreatedTs: user.CreatedTs}
}

func (s *APIV1Service) SignUp(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	user, token, err := s.AuthService.SignUp(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, sessionResponse{User: toUserResponse(user), Token: token})
}

func (s *APIV1Service) SignIn(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := req.Validate(); err != nil {
		return respondError(c, err)
	}

	user, token, err := s.AuthService.SignIn(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse{User: toUserResponse(user), Token: token})
}

func (s *APIV1Service) SignOut(c echo.Context) error {
	token := c.Request().Header.Get("Authorization")
	if len(token) > len("Bearer ") {
		token = token[len("Bearer "):]
	}
	if err := s.AuthService.SignOut(c.Request().Context(), token); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) CurrentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, toUserResponse(auth.UserFrom(c)))
}
