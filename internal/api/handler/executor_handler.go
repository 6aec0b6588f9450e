package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opportunitycup/marketplace-api/internal/core/ports"
)

// ExecutorHandler serves the executor side of a user's profile.
type ExecutorHandler struct {
	users ports.UserService
}

func NewExecutorHandler(users ports.UserService) *ExecutorHandler {
	return &ExecutorHandler{users: users}
}

// UpdateProfile merges the request into the caller's executor profile.
//
// @Summary   Update executor profile
// @Tags      executor
// @Accept    json
// @Produce   json
// @Security  AccessToken
// @Param     body  body      executorUpdateRequest  true  "Fields to change"
// @Success   200   {object}  executorResponse
// @Failure   401   {object}  messageResponse
// @Failure   403   {object}  messageResponse
// @Failure   422   {object}  messageResponse
// @Router    /executor/update [post]
func (h *ExecutorHandler) UpdateProfile(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req executorUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateExecutorProfile(c.Request().Context(), p, toExecutorUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, executorResponse{Message: msgExecutorSaved, Executor: toExecutorView(user.Executor)})
}
