// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"colis/internal/modules/cashbook"
	"colis/internal/modules/cashclosing"
	"colis/internal/modules/debt"
	"colis/internal/modules/merchant"
	"colis/internal/modules/order"
	"colis/internal/modules/remittance"
	"colis/internal/modules/shortfall"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, merchant.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrInvalidState),
		errors.Is(err, order.ErrPickupNotConfirmed),
		errors.Is(err, order.ErrReturnAlreadyOpen):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeFinanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, debt.ErrBadRequest),
		errors.Is(err, shortfall.ErrBadRequest),
		errors.Is(err, cashbook.ErrBadRequest),
		errors.Is(err, cashclosing.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, debt.ErrNotFound),
		errors.Is(err, remittance.ErrNotFound),
		errors.Is(err, shortfall.ErrNotFound),
		errors.Is(err, cashclosing.ErrNotFound),
		errors.Is(err, merchant.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, debt.ErrInvalidState),
		errors.Is(err, remittance.ErrAlreadyPaid),
		errors.Is(err, remittance.ErrNotPayable),
		errors.Is(err, shortfall.ErrAlreadyPaid),
		errors.Is(err, shortfall.ErrInvalidAmount),
		errors.Is(err, cashclosing.ErrAlreadyClosed):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
