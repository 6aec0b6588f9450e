package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opportunitycup/marketplace-api/internal/core/domain"
	"github.com/opportunitycup/marketplace-api/internal/core/ports"
)

type balanceOp func(ctx context.Context, p *domain.Principal, sum int64) (*domain.User, error)

type BalanceHandler struct {
	balance ports.BalanceService
}

func NewBalanceHandler(balance ports.BalanceService) *BalanceHandler {
	return &BalanceHandler{balance: balance}
}

// TopUp adds funds to a customer's balance.
//
// @Summary   Top up balance
// @Tags      balance
// @Accept    json
// @Produce   json
// @Security  AccessToken
// @Param     body  body      balanceRequest  true  "Amount"
// @Success   200   {object}  balanceResponse
// @Failure   401   {object}  messageResponse
// @Failure   403   {object}  messageResponse
// @Failure   422   {object}  messageResponse
// @Router    /balance/topup [post]
func (h *BalanceHandler) TopUp(c echo.Context) error {
	return h.move(c, h.balance.TopUp, msgToppedUp)
}

// Decrease withdraws funds from an executor's balance.
//
// @Summary   Withdraw from balance
// @Tags      balance
// @Accept    json
// @Produce   json
// @Security  AccessToken
// @Param     body  body      balanceRequest  true  "Amount"
// @Success   200   {object}  balanceResponse
// @Failure   401   {object}  messageResponse
// @Failure   403   {object}  messageResponse
// @Failure   409   {object}  messageResponse
// @Failure   422   {object}  messageResponse
// @Router    /balance/decrease [post]
func (h *BalanceHandler) Decrease(c echo.Context) error {
	return h.move(c, h.balance.Decrease, msgDecreased)
}

func (h *BalanceHandler) move(c echo.Context, op balanceOp, msg string) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req balanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := op(c.Request().Context(), p, req.Sum)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balanceResponse{Message: msg, Balance: user.Balance})
}
