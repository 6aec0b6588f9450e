package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opportunitycup/marketplace-api/internal/core/ports"
)

const (
	msgSignedUp       = "user registered"
	msgSignedIn       = "signed in"
	msgRefreshed      = "token refreshed"
	msgLoggedOut      = "logged out"
	msgUserFetched    = "user fetched"
	msgRoleChanged    = "role changed"
	msgLogoUpdated    = "logo updated"
	msgToppedUp       = "balance topped up"
	msgDecreased      = "balance decreased"
	msgBalanceHistory = "balance history"
	msgExecutorSaved  = "executor profile updated"
)

type AuthHandler struct {
	authService ports.AuthService
	cookie      RefreshCookie
}

func NewAuthHandler(authService ports.AuthService, cookie RefreshCookie) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// SignUp creates a new account and starts a session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      409   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	h.cookie.set(c, res.RefreshToken)
	return c.JSON(http.StatusCreated, authResponse{Message: msgSignedUp, Token: res.AccessToken, User: toUserView(res.User)})
}

// SignIn checks credentials and starts a session.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.SignIn(c.Request().Context(), ports.SignInInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}

	h.cookie.set(c, res.RefreshToken)
	return c.JSON(http.StatusOK, authResponse{Message: msgSignedIn, Token: res.AccessToken, User: toUserView(res.User)})
}

// Refresh exchanges the refresh cookie for a new access token and rotates the cookie.
//
// @Summary      Refresh access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  messageResponse
// @Failure      402  {object}  messageResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	res, err := h.authService.Refresh(c.Request().Context(), h.cookie.read(c))
	if err != nil {
		return err
	}

	h.cookie.set(c, res.RefreshToken)
	return c.JSON(http.StatusOK, authResponse{Message: msgRefreshed, Token: res.AccessToken})
}

// Logout revokes the refresh cookie and clears it.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), h.cookie.read(c)); err != nil {
		return err
	}
	h.cookie.clear(c)
	return c.JSON(http.StatusOK, messageResponse{Message: msgLoggedOut})
}
