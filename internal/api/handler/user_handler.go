package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opportunitycup/marketplace-api/internal/api/middleware"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
)

// UserHandler serves the caller's own account and public profiles.
type UserHandler struct {
	users   ports.UserService
	balance ports.BalanceService
}

func NewUserHandler(users ports.UserService, balance ports.BalanceService) *UserHandler {
	return &UserHandler{users: users, balance: balance}
}

// Me returns the authenticated user's account.
//
// @Summary   Current user
// @Tags      user
// @Produce   json
// @Security  AccessToken
// @Success   200  {object}  profileResponse
// @Failure   401  {object}  messageResponse
// @Failure   402  {object}  messageResponse
// @Router    /user [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	user, err := h.users.Profile(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Message: msgUserFetched, User: toProfileView(user)})
}

// Profile returns any user's public profile. Authentication is optional.
//
// @Summary   Public profile
// @Tags      user
// @Produce   json
// @Param     userId  path      string  true  "User ID"
// @Success   200     {object}  publicProfileResponse
// @Failure   401     {object}  messageResponse
// @Failure   404     {object}  messageResponse
// @Router    /user/profile/{userId} [get]
func (h *UserHandler) Profile(c echo.Context) error {
	viewer, _ := middleware.Principal(c)

	user, err := h.users.PublicProfile(c.Request().Context(), viewer, c.Param("userId"))
	if err != nil {
		return err
	}

	self := viewer != nil && viewer.UserID == user.ID
	return c.JSON(http.StatusOK, publicProfileResponse{Message: msgUserFetched, User: toPublicProfileView(user, self)})
}

// ChangeRole switches the caller between customer and executor.
//
// @Summary   Change role
// @Tags      user
// @Accept    json
// @Produce   json
// @Security  AccessToken
// @Param     body  body      changeRoleRequest  true  "New role"
// @Success   200   {object}  authResponse
// @Failure   401   {object}  messageResponse
// @Failure   422   {object}  messageResponse
// @Router    /user/change [post]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req changeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.users.ChangeRole(c.Request().Context(), p, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Message: msgRoleChanged, Token: res.AccessToken, User: toUserView(res.User)})
}

// UpdateLogo stores a new avatar URL.
//
// @Summary   Update logo
// @Tags      user
// @Accept    json
// @Produce   json
// @Security  AccessToken
// @Param     body  body      logoRequest  true  "Logo URL"
// @Success   200   {object}  profileResponse
// @Failure   401   {object}  messageResponse
// @Failure   422   {object}  messageResponse
// @Router    /user/logo [post]
func (h *UserHandler) UpdateLogo(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req logoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateLogo(c.Request().Context(), p, req.Logo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Message: msgLogoUpdated, User: toProfileView(user)})
}

// Balance returns the caller's balance and one page of operations.
//
// @Summary   Balance history
// @Tags      user
// @Produce   json
// @Security  AccessToken
// @Param     page  query     int  false  "Page number (15 per page)"
// @Success   200   {object}  historyResponse
// @Failure   401   {object}  messageResponse
// @Router    /user/balance [get]
func (h *UserHandler) Balance(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var q historyQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	history, err := h.balance.History(c.Request().Context(), p, q.Page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toHistoryResponse(history))
}
