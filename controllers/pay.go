package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/settlement"
	"github.com/Oo-jackson-oO/campus-animal-care-miniprogram/utils"
)

// PayController is the HTTP surface of the settlement engine. Note there is
// no idempotency key on either prepay route: a client retrying a lost
// response creates a second record.
type PayController struct {
	Engine *settlement.Engine
}

func NewPayController(engine *settlement.Engine) *PayController {
	return &PayController{Engine: engine}
}

// settlementError maps classified engine failures to HTTP statuses.
// Unclassified errors are storage failures: log and answer 500.
func settlementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settlement.ErrCampaignNotFound),
		errors.Is(err, settlement.ErrPledgeNotFound),
		errors.Is(err, settlement.ErrProductNotFound):
		utils.Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, settlement.ErrInvalidAmount),
		errors.Is(err, settlement.ErrInvalidQuantity),
		errors.Is(err, settlement.ErrInvalidUser),
		errors.Is(err, settlement.ErrInsufficientStock):
		utils.Fail(w, http.StatusBadRequest, err.Error())
	default:
		utils.Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func pathID(r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

type donationPrepayRequest struct {
	UserID uint    `json:"user_id"`
	Amount float64 `json:"amount"`
}

// DonationPrepay POST /api/pay/donation/{id}/prepay
// Creates a pledge against the campaign. With the mock gateway the pledge
// settles inside the prepay transaction and the campaign amount is already
// advanced when this returns; otherwise the pledge stays pending and the
// answer is 501 until a real provider is configured.
func (c *PayController) DonationPrepay(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathID(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest, "campaign id must be a positive integer")
		return
	}

	var req donationPrepayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := c.Engine.CreatePledge(r.Context(), campaignID, req.UserID, req.Amount)
	if err != nil {
		settlementError(w, err)
		return
	}

	data := map[string]interface{}{
		"mock":      res.Mock,
		"record_id": res.RecordID,
		"payment":   nil,
	}
	if !res.Mock {
		utils.WriteJSON(w, http.StatusNotImplemented, utils.Response{
			Code:    http.StatusNotImplemented,
			Message: "real payment gateway not configured (set MOCK_PAY=true for integration testing)",
			Data:    data,
		})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "prepay successful",
		Data:    data,
	})
}

type donationConfirmRequest struct {
	RecordID uint `json:"record_id"`
}

// DonationConfirm POST /api/pay/donation/{id}/confirm
// Idempotent: confirming an already-completed pledge answers already=true
// without moving the campaign amount again.
func (c *PayController) DonationConfirm(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := pathID(r, "id")
	if !ok {
		utils.Fail(w, http.StatusBadRequest, "campaign id must be a positive integer")
		return
	}

	var req donationConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RecordID == 0 {
		utils.Fail(w, http.StatusBadRequest, "record_id must be a positive integer")
		return
	}

	res, err := c.Engine.ConfirmPledge(r.Context(), campaignID, req.RecordID)
	if err != nil {
		settlementError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "confirm successful",
		Data:    res,
	})
}

type orderPrepayRequest struct {
	UserID    uint `json:"user_id"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// OrderPrepay POST /api/pay/order/prepay
func (c *PayController) OrderPrepay(w http.ResponseWriter, r *http.Request) {
	var req orderPrepayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := c.Engine.CreateOrder(r.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		settlementError(w, err)
		return
	}

	data := map[string]interface{}{
		"mock": res.Mock,
		"order": map[string]interface{}{
			"id":             res.ID,
			"order_no":       res.OrderNo,
			"status":         res.Status,
			"total_amount":   res.TotalAmount,
			"transaction_id": res.TransactionID,
		},
		"payment": nil,
	}
	if !res.Mock {
		utils.WriteJSON(w, http.StatusNotImplemented, utils.Response{
			Code:    http.StatusNotImplemented,
			Message: "real payment gateway not configured (set MOCK_PAY=true for integration testing)",
			Data:    data,
		})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Code:    http.StatusOK,
		Message: "prepay successful",
		Data:    data,
	})
}
