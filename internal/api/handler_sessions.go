package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gamecafe-backend/internal/model"
	"gamecafe-backend/internal/mw"
	"gamecafe-backend/internal/store"
	"gamecafe-backend/internal/timefmt"
)

type startSessionRequest struct {
	CustomerName string          `json:"customer_name" binding:"required"`
	MachineName  string          `json:"machine_name" binding:"required"`
	Mode         string          `json:"multi_single" binding:"required"`
	Discount     decimal.Decimal `json:"discount"`
	// EndTime in DD/MM/YYYY HH:MM:SS; empty means open-ended.
	EndTime string `json:"end_time"`
}

// ListSessions returns all sessions with their lines and logs, open first.
func (h *Handler) ListSessions(c *gin.Context) {
	var sessions []model.Session
	err := h.store.DB().
		Preload("DrinksFoods", func(db *gorm.DB) *gorm.DB { return db.Order("food_lines.id") }).
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("session_logs.id") }).
		Order("ended, id").
		Find(&sessions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession returns one session with lines and logs.
func (h *Handler) GetSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sess, err := h.store.GetSession(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// StartSession opens a billed occupancy on a machine.
func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var endTime *time.Time
	if req.EndTime != "" {
		t, err := timefmt.Parse(req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be DD/MM/YYYY HH:MM:SS"})
			return
		}
		endTime = &t
	}

	sess, err := h.store.StartSession(c.Request.Context(), store.StartSessionParams{
		CustomerName: req.CustomerName,
		MachineName:  req.MachineName,
		Mode:         req.Mode,
		Discount:     req.Discount,
		EndTime:      endTime,
	}, time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// AccrueSession materializes the cost accrued since the last check mark.
func (h *Handler) AccrueSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sess, err := h.store.Accrue(c.Request.Context(), id, time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type addItemRequest struct {
	ItemName string `json:"item_name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// AddSessionItem adds a food/drink line priced from the current inventory.
func (h *Handler) AddSessionItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.store.AddItem(c.Request.Context(), id, req.ItemName, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// RemoveSessionItem drops the food line at the given position.
func (h *Handler) RemoveSessionItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line index"})
		return
	}

	sess, err := h.store.RemoveItem(c.Request.Context(), id, index)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type changeModeRequest struct {
	Mode        string `json:"multi_single" binding:"required"`
	MachineName string `json:"machine_name" binding:"required"`
}

// ChangeSessionMode switches the session to another mode and/or machine,
// billing the elapsed window under the old price first.
func (h *Handler) ChangeSessionMode(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req changeModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.store.ChangeMode(c.Request.Context(), id, store.ModeChangeParams{
		NewMode:        req.Mode,
		NewMachineName: req.MachineName,
	}, time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// EndSession closes the session: final accrual, terminal log, ended flag.
func (h *Handler) EndSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	sess, err := h.store.EndSession(c.Request.Context(), id, time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type snapshotRequest struct {
	Version      int             `json:"version" binding:"required"`
	CustomerName string          `json:"customer_name" binding:"required"`
	Discount     decimal.Decimal `json:"discount"`
	IsOpenTime   bool            `json:"is_open_time"`
}

// UpdateSession applies the client-editable fields, rejecting stale versions.
func (h *Handler) UpdateSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req snapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.store.UpdateSnapshot(c.Request.Context(), id, store.SnapshotUpdate{
		Version:      req.Version,
		CustomerName: req.CustomerName,
		Discount:     req.Discount,
		IsOpenTime:   req.IsOpenTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// DeleteSession discards a session without producing a quote.
func (h *Handler) DeleteSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteSession(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkoutRequest struct {
	Discount             decimal.Decimal `json:"discount"`
	DiscountReason       string          `json:"discount_reason"`
	AdditionalCost       decimal.Decimal `json:"additional_cost"`
	AdditionalCostReason string          `json:"additional_cost_reason"`
}

// CheckoutSession finalizes an ended session into an immutable quote,
// decrements sold inventory and deletes the session, all in one transaction.
func (h *Handler) CheckoutSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.store.Checkout(c.Request.Context(), id, store.Adjustments{
		CashierName:          c.GetString(mw.CtxName),
		Discount:             req.Discount,
		DiscountReason:       req.DiscountReason,
		AdditionalCost:       req.AdditionalCost,
		AdditionalCostReason: req.AdditionalCostReason,
	}, time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}

	h.menu.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, quote)
}
