// README: Order lifecycle handlers; thin controllers over the order service.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"colis/internal/modules/order"
	"colis/internal/types"
)

type OrderHandler struct {
	order *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{order: svc}
}

type createOrderReq struct {
	MerchantID    string `json:"merchant_id"`
	ArticleAmount int64  `json:"article_amount"`
	DeliveryFee   int64  `json:"delivery_fee"`
	ExpeditionFee int64  `json:"expedition_fee"`
	Urgent        bool   `json:"urgent"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.MerchantID == "" {
		writeError(c, http.StatusBadRequest, "missing merchant_id")
		return
	}
	id, err := h.order.Create(c.Request.Context(), order.CreateCommand{
		MerchantID:    types.ID(req.MerchantID),
		ArticleAmount: req.ArticleAmount,
		DeliveryFee:   req.DeliveryFee,
		ExpeditionFee: req.ExpeditionFee,
		Urgent:        req.Urgent,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_id": id, "status": order.StatusPending})
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.order.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderView(o))
}

func (h *OrderHandler) History(c *gin.Context) {
	events, err := h.order.History(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type editOrderReq struct {
	ArticleAmount int64 `json:"article_amount"`
	DeliveryFee   int64 `json:"delivery_fee"`
	ExpeditionFee int64 `json:"expedition_fee"`
}

func (h *OrderHandler) Edit(c *gin.Context) {
	var req editOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.order.Edit(c.Request.Context(), order.EditCommand{
		OrderID:       types.ID(c.Param("id")),
		ArticleAmount: req.ArticleAmount,
		DeliveryFee:   req.DeliveryFee,
		ExpeditionFee: req.ExpeditionFee,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.order.Delete(c.Request.Context(), order.DeleteCommand{OrderID: types.ID(c.Param("id"))}); err != nil {
		writeOrderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type assignReq struct {
	RiderID string `json:"rider_id"`
}

func (h *OrderHandler) Assign(c *gin.Context) {
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil || req.RiderID == "" {
		writeError(c, http.StatusBadRequest, "missing rider_id")
		return
	}
	err := h.order.Assign(c.Request.Context(), order.AssignCommand{
		OrderID: types.ID(c.Param("id")),
		RiderID: types.ID(req.RiderID),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": order.StatusInProgress})
}

func (h *OrderHandler) MarkReady(c *gin.Context) {
	err := h.order.MarkReady(c.Request.Context(), order.ReadyCommand{OrderID: types.ID(c.Param("id"))})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": order.StatusReadyForPickup})
}

type riderReq struct {
	RiderID string `json:"rider_id"`
}

func (h *OrderHandler) ConfirmPickup(c *gin.Context) {
	var req riderReq
	_ = c.ShouldBindJSON(&req)
	err := h.order.ConfirmPickup(c.Request.Context(), order.PickupCommand{
		OrderID: types.ID(c.Param("id")),
		RiderID: types.ID(req.RiderID),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) StartDelivery(c *gin.Context) {
	var req riderReq
	_ = c.ShouldBindJSON(&req)
	err := h.order.StartDelivery(c.Request.Context(), order.StartDeliveryCommand{
		OrderID: types.ID(c.Param("id")),
		RiderID: types.ID(req.RiderID),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": order.StatusEnRoute})
}

type updateStatusReq struct {
	Status         string `json:"status"`
	PaymentMode    string `json:"payment_mode"`
	AmountReceived *int64 `json:"amount_received"`
	FollowUpAt     string `json:"follow_up_at"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		writeError(c, http.StatusBadRequest, "missing status")
		return
	}
	var followUp *time.Time
	if req.FollowUpAt != "" {
		t, err := time.Parse(time.RFC3339, req.FollowUpAt)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid follow_up_at")
			return
		}
		followUp = &t
	}
	err := h.order.UpdateStatus(c.Request.Context(), order.UpdateStatusCommand{
		OrderID:        types.ID(c.Param("id")),
		NewStatus:      order.Status(req.Status),
		PaymentMode:    order.PaymentMode(req.PaymentMode),
		AmountReceived: req.AmountReceived,
		FollowUpAt:     followUp,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *OrderHandler) DeclareReturn(c *gin.Context) {
	err := h.order.DeclareReturn(c.Request.Context(), order.DeclareReturnCommand{OrderID: types.ID(c.Param("id"))})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": order.StatusReturnDeclared})
}

type adminReq struct {
	AdminID string `json:"admin_id"`
}

func (h *OrderHandler) ReceiveReturn(c *gin.Context) {
	var req adminReq
	_ = c.ShouldBindJSON(&req)
	err := h.order.ReceiveReturn(c.Request.Context(), order.ReceiveReturnCommand{
		OrderID: types.ID(c.Param("id")),
		AdminID: types.ID(req.AdminID),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": order.StatusReturned})
}

type resetStatusReq struct {
	Status  string `json:"status"`
	AdminID string `json:"admin_id"`
}

func (h *OrderHandler) ResetStatus(c *gin.Context) {
	var req resetStatusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		writeError(c, http.StatusBadRequest, "missing status")
		return
	}
	err := h.order.ResetStatus(c.Request.Context(), order.ResetStatusCommand{
		OrderID:   types.ID(c.Param("id")),
		NewStatus: order.Status(req.Status),
		AdminID:   types.ID(req.AdminID),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func orderView(o *order.Order) gin.H {
	v := gin.H{
		"order_id":       o.ID,
		"merchant_id":    o.MerchantID,
		"status":         o.Status,
		"payment_status": o.PaymentStatus,
		"article_amount": o.ArticleAmount,
		"delivery_fee":   o.DeliveryFee,
		"expedition_fee": o.ExpeditionFee,
		"report_date":    o.ReportDate,
		"archived":       o.Archived,
		"urgent":         o.Urgent,
	}
	if o.RiderID != nil {
		v["rider_id"] = *o.RiderID
	}
	if o.AmountReceived != nil {
		v["amount_received"] = *o.AmountReceived
	}
	if o.FollowUpAt != nil {
		v["follow_up_at"] = o.FollowUpAt.Format(time.RFC3339)
	}
	return v
}
