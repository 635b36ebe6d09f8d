package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gamecafe-backend/internal/model"
	"gamecafe-backend/internal/timefmt"
)

type paymentRequest struct {
	Name    string          `json:"name" binding:"required"`
	Type    string          `json:"type" binding:"required"`
	Details string          `json:"details"`
	Date    string          `json:"date" binding:"required"`
	Cost    decimal.Decimal `json:"cost" binding:"required"`
}

func (r *paymentRequest) validate() string {
	switch r.Type {
	case model.PaymentOnce, model.PaymentDaily, model.PaymentMonthly, model.PaymentYearly:
	default:
		return "type must be once, daily, monthly or yearly"
	}
	if _, err := timefmt.Parse(r.Date); err != nil {
		return "date must be DD/MM/YYYY"
	}
	return ""
}

// ListPayments returns all expense records.
func (h *Handler) ListPayments(c *gin.Context) {
	var payments []model.Payment
	if err := h.store.DB().Order("id").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payments)
}

// CreatePayment records an expense.
func (h *Handler) CreatePayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	payment := model.Payment{
		Name:    req.Name,
		Type:    req.Type,
		Details: req.Details,
		Date:    req.Date,
		Cost:    req.Cost,
	}
	if err := h.store.DB().Create(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// UpdatePayment edits an expense record.
func (h *Handler) UpdatePayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var payment model.Payment
	if err := h.store.DB().First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	payment.Name = req.Name
	payment.Type = req.Type
	payment.Details = req.Details
	payment.Date = req.Date
	payment.Cost = req.Cost

	if err := h.store.DB().Save(&payment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payment)
}

// DeletePayment removes an expense record.
func (h *Handler) DeletePayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.store.DB().Delete(&model.Payment{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
