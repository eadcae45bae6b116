package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orderhub/platform/internal/api/response"
	"github.com/orderhub/platform/internal/core/domain"
	"github.com/orderhub/platform/internal/core/ports"
)

// defaultPageLimit applies when the limit query parameter is absent.
const defaultPageLimit = 20

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// --- Request / Response types ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// userView is the public projection of a user record.
type userView struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name,omitempty"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type userListResponse struct {
	Items      []userView `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}

func toUserView(u *domain.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: u.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// Register creates a new account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /v1/users/register [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, err.Error())
	}

	user, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}

	return response.OK(c, http.StatusOK, toUserView(user))
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Router       /v1/users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, err.Error())
	}

	token, _, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Unknown account is a 401 NOT_FOUND on this endpoint, distinct
		// from the 403 INVALID_CREDENTIALS of a wrong password.
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NewError(http.StatusUnauthorized, response.CodeNotFound, "user not found")
		}
		return err
	}

	return response.OK(c, http.StatusOK, loginResponse{Token: token})
}

// Me returns the caller's own profile.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope
// @Failure      401  {object}  response.Envelope
// @Router       /v1/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.service.Profile(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, toUserView(user))
}

// UpdateMe updates the caller's own profile.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /v1/users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return response.NewError(http.StatusBadRequest, response.CodeValidation, err.Error())
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), ports.UpdateProfileInput{
		UserID: identity.UserID,
		Name:   req.Name,
	})
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, toUserView(user))
}

// List returns a page of accounts, admin only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int     false  "Page (1-based)"
// @Param        limit  query     int     false  "Page size (clamped 1-100)"
// @Param        email  query     string  false  "Email substring filter"
// @Success      200    {object}  response.Envelope
// @Failure      403    {object}  response.Envelope
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	result, err := h.service.ListUsers(c.Request().Context(), ports.ListUsersInput{
		Email: c.QueryParam("email"),
		Page:  intQuery(c, "page", 1),
		Limit: intQuery(c, "limit", defaultPageLimit),
	})
	if err != nil {
		return err
	}

	items := make([]userView, 0, len(result.Items))
	for _, u := range result.Items {
		items = append(items, toUserView(u))
	}

	return response.OK(c, http.StatusOK, userListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// intQuery parses an integer query parameter, falling back on absence or junk.
func intQuery(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
