package actions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
	"gitlab.com/agentlink-marketplace/attribution_api/service"
)

// RouteTransaction godoc
// swagger:route POST /transactions commission route_transaction
// Compute and record the commission split for a completed transaction
func (actions *Actions) RouteTransaction(c *gin.Context) {
	request := model.TransactionRequest{}
	if err := c.ShouldBind(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid transaction payload")
		return
	}
	decision, err := actions.service.RouteCommission(&request)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			abortWithError(c, http.StatusBadRequest, "Invalid gross amount")
			return
		}
		if errors.Is(err, service.ErrCommissionRecipientAmbiguous) {
			abortWithError(c, http.StatusConflict, "Ambiguous commission recipient")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Unable to route commission")
		return
	}
	c.JSON(http.StatusOK, decision)
}

// ReverseTransaction godoc
// swagger:route POST /transactions/{transaction_id}/reverse commission reverse_transaction
// Cancel the held ledger rows of a refunded or charged back transaction
func (actions *Actions) ReverseTransaction(c *gin.Context) {
	transactionID, ok := getParamAsUint64(c, "transaction_id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	cancelled, err := actions.service.ReverseTransaction(transactionID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to reverse transaction")
		return
	}
	c.JSON(http.StatusOK, map[string]interface{}{"cancelled": cancelled})
}

// ConfirmPayout godoc
// swagger:route POST /payouts/{event_id}/confirm commission confirm_payout
// Apply the payments collaborator's execution result to a scheduled payout
func (actions *Actions) ConfirmPayout(c *gin.Context) {
	eventID, ok := getParamAsUint64(c, "event_id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid commission event id")
		return
	}
	request := struct {
		Success *bool `json:"success" form:"success" binding:"required"`
	}{}
	if err := c.ShouldBind(&request); err != nil {
		abortWithError(c, http.StatusBadRequest, "Missing payout result")
		return
	}
	event, err := actions.service.ConfirmPayout(eventID, *request.Success)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to confirm payout")
		return
	}
	c.JSON(http.StatusOK, event)
}
