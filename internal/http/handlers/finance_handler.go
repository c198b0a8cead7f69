// README: Finance handlers; balances, debts, remittances, shortfalls, cash closings.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"colis/internal/modules/cashbook"
	"colis/internal/modules/cashclosing"
	"colis/internal/modules/debt"
	"colis/internal/modules/ledger"
	"colis/internal/modules/remittance"
	"colis/internal/modules/shortfall"
	"colis/internal/types"
)

type FinanceHandler struct {
	ledger      *ledger.Service
	debts       *debt.Service
	remittances *remittance.Service
	shortfalls  *shortfall.Service
	cashbook    *cashbook.Service
	closings    *cashclosing.Service
}

func NewFinanceHandler(
	ledgerSvc *ledger.Service,
	debtSvc *debt.Service,
	remittanceSvc *remittance.Service,
	shortfallSvc *shortfall.Service,
	cashbookSvc *cashbook.Service,
	closingSvc *cashclosing.Service,
) *FinanceHandler {
	return &FinanceHandler{
		ledger:      ledgerSvc,
		debts:       debtSvc,
		remittances: remittanceSvc,
		shortfalls:  shortfallSvc,
		cashbook:    cashbookSvc,
		closings:    closingSvc,
	}
}

func dayParam(c *gin.Context, value string) (types.Day, bool) {
	day, err := types.ParseDay(value)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return "", false
	}
	return day, true
}

func (h *FinanceHandler) GetDailyBalance(c *gin.Context) {
	day, ok := dayParam(c, c.Query("date"))
	if !ok {
		return
	}
	b, err := h.ledger.GetDailyBalance(c.Request.Context(), types.ID(c.Param("id")), day)
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"merchant_id":       b.MerchantID,
		"report_date":       b.ReportDate,
		"orders_sent":       b.OrdersSent,
		"orders_delivered":  b.OrdersDelivered,
		"revenue_articles":  b.RevenueArticles,
		"delivery_fees":     b.DeliveryFees,
		"expedition_fees":   b.ExpeditionFees,
		"packaging_fees":    b.PackagingFees,
		"remittance_amount": b.RemittanceAmount,
	})
}

type createDebtReq struct {
	MerchantID string `json:"merchant_id"`
	Date       string `json:"date"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
}

func (h *FinanceHandler) CreateDebt(c *gin.Context) {
	var req createDebtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	day, ok := dayParam(c, req.Date)
	if !ok {
		return
	}
	id, err := h.debts.Create(c.Request.Context(), debt.CreateCommand{
		MerchantID: types.ID(req.MerchantID),
		Day:        day,
		Amount:     req.Amount,
		Reason:     req.Reason,
	})
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"debt_id": id})
}

type editDebtReq struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (h *FinanceHandler) EditDebt(c *gin.Context) {
	var req editDebtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.debts.Edit(c.Request.Context(), debt.EditCommand{
		DebtID: types.ID(c.Param("id")),
		Amount: req.Amount,
		Reason: req.Reason,
	})
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHandler) DeleteDebt(c *gin.Context) {
	if err := h.debts.Delete(c.Request.Context(), types.ID(c.Param("id"))); err != nil {
		writeFinanceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FinanceHandler) ListMerchantDebts(c *gin.Context) {
	debts, err := h.debts.ListForMerchant(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"debts": debts})
}

type syncRemittancesReq struct {
	Date string `json:"date"`
}

func (h *FinanceHandler) SyncRemittances(c *gin.Context) {
	var req syncRemittancesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	day, ok := dayParam(c, req.Date)
	if !ok {
		return
	}
	rows, err := h.remittances.Sync(c.Request.Context(), day)
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remittances": rows})
}

func (h *FinanceHandler) ListRemittances(c *gin.Context) {
	day, ok := dayParam(c, c.Query("date"))
	if !ok {
		return
	}
	rows, err := h.remittances.List(c.Request.Context(), day)
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remittances": rows})
}

type payRemittanceReq struct {
	UserID string `json:"user_id"`
}

func (h *FinanceHandler) PayRemittance(c *gin.Context) {
	var req payRemittanceReq
	_ = c.ShouldBindJSON(&req)
	net, err := h.remittances.MarkPaid(c.Request.Context(), types.ID(c.Param("id")), types.ID(req.UserID))
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"net_amount_paid": net})
}

type createShortfallReq struct {
	RiderID string `json:"rider_id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Comment string `json:"comment"`
}

func (h *FinanceHandler) CreateShortfall(c *gin.Context) {
	var req createShortfallReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := shortfall.CreateCommand{
		RiderID: types.ID(req.RiderID),
		Amount:  req.Amount,
		Comment: req.Comment,
	}
	if req.OrderID != "" {
		oid := types.ID(req.OrderID)
		cmd.OrderID = &oid
	}
	id, err := h.shortfalls.Create(c.Request.Context(), cmd)
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shortfall_id": id})
}

type settleShortfallReq struct {
	AmountPaid int64  `json:"amount_paid"`
	UserID     string `json:"user_id"`
	Date       string `json:"date"`
}

func (h *FinanceHandler) SettleShortfall(c *gin.Context) {
	var req settleShortfallReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	day, ok := dayParam(c, req.Date)
	if !ok {
		return
	}
	err := h.shortfalls.Settle(c.Request.Context(), shortfall.SettleCommand{
		ShortfallID: types.ID(c.Param("id")),
		AmountPaid:  req.AmountPaid,
		UserID:      types.ID(req.UserID),
		Day:         day,
	})
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	sf, err := h.shortfalls.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": sf.Status, "outstanding": sf.Amount})
}

type createCashTxReq struct {
	Type    string `json:"type"`
	Amount  int64  `json:"amount"`
	Date    string `json:"date"`
	RiderID string `json:"rider_id"`
	OrderID string `json:"order_id"`
	Label   string `json:"label"`
	UserID  string `json:"user_id"`
}

func (h *FinanceHandler) CreateCashTransaction(c *gin.Context) {
	var req createCashTxReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	day, ok := dayParam(c, req.Date)
	if !ok {
		return
	}
	cmd := cashbook.CreateCommand{
		Type:   cashbook.TxType(req.Type),
		Amount: req.Amount,
		Day:    day,
		Label:  req.Label,
	}
	if req.RiderID != "" {
		rid := types.ID(req.RiderID)
		cmd.RiderID = &rid
	}
	if req.OrderID != "" {
		oid := types.ID(req.OrderID)
		cmd.OrderID = &oid
	}
	if req.UserID != "" {
		uid := types.ID(req.UserID)
		cmd.CreatedBy = &uid
	}
	id, err := h.cashbook.Create(c.Request.Context(), cmd)
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction_id": id})
}

type cashClosingReq struct {
	Date       string `json:"date"`
	ActualCash int64  `json:"actual_cash"`
	Comment    string `json:"comment"`
	UserID     string `json:"user_id"`
}

func (h *FinanceHandler) PerformCashClosing(c *gin.Context) {
	var req cashClosingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	day, ok := dayParam(c, req.Date)
	if !ok {
		return
	}
	closing, err := h.closings.Perform(c.Request.Context(), cashclosing.PerformCommand{
		Day:        day,
		ActualCash: req.ActualCash,
		Comment:    req.Comment,
		ClosedBy:   types.ID(req.UserID),
	})
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"expected_cash": closing.ExpectedCash,
		"actual_cash":   closing.ActualCash,
		"difference":    closing.Difference,
	})
}

func (h *FinanceHandler) GetCashClosing(c *gin.Context) {
	day, ok := dayParam(c, c.Param("date"))
	if !ok {
		return
	}
	closing, err := h.closings.GetByDate(c.Request.Context(), day)
	if err != nil {
		writeFinanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, closing)
}
