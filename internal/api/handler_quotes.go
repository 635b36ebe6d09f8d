package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gamecafe-backend/internal/model"
	"gamecafe-backend/internal/mw"
	"gamecafe-backend/internal/store"
	"gamecafe-backend/internal/timefmt"
)

// ListQuotes returns all finalized quotes, newest first.
func (h *Handler) ListQuotes(c *gin.Context) {
	var quotes []model.Quote
	err := h.store.DB().
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("quote_logs.log_number") }).
		Preload("FoodDrinks", func(db *gorm.DB) *gorm.DB { return db.Order("quote_lines.item_number") }).
		Order("id desc").
		Find(&quotes).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quotes)
}

// GetQuote returns one quote with its copied logs and lines.
func (h *Handler) GetQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var quote model.Quote
	err := h.store.DB().
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("quote_logs.log_number") }).
		Preload("FoodDrinks", func(db *gorm.DB) *gorm.DB { return db.Order("quote_lines.item_number") }).
		First(&quote, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, quote)
}

// DeleteQuote removes a quote and its copied rows. Admin only.
func (h *Handler) DeleteQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := h.store.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&model.QuoteLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quote_id = ?", id).Delete(&model.QuoteLine{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Quote{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type shopCheckoutRequest struct {
	Items                []store.ItemDecrement `json:"items" binding:"required,min=1,dive"`
	Discount             decimal.Decimal       `json:"discount"`
	DiscountReason       string                `json:"discount_reason"`
	AdditionalCost       decimal.Decimal       `json:"additional_cost"`
	AdditionalCostReason string                `json:"additional_cost_reason"`
}

// ShopCheckout records a walk-in sale: no session, no machine usage. The
// quote and the stock decrements are persisted in one transaction.
func (h *Handler) ShopCheckout(c *gin.Context) {
	var req shopCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	quote := &model.Quote{
		UserName:         c.GetString(mw.CtxName),
		MachineName:      "shop",
		StartTime:        now,
		EndTime:          now,
		TotalCost:        decimal.Zero,
		FoodsDrinksCost:  decimal.Zero,
		MachineUsageCost: decimal.Zero,
		Date:             timefmt.FormatDateTime(now),
	}

	for i, it := range req.Items {
		var item model.FoodDrinkItem
		if err := h.store.DB().Where("item_name = ?", it.ItemName).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(c, store.ErrUnknownItem)
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		lineCost := item.TotalPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		quote.FoodsDrinksCost = quote.FoodsDrinksCost.Add(lineCost)
		quote.FoodDrinks = append(quote.FoodDrinks, model.QuoteLine{
			ItemNumber: i + 1,
			ItemName:   item.ItemName,
			Price:      item.TotalPrice,
			Quantity:   it.Quantity,
		})
	}

	quote.TotalCost = quote.FoodsDrinksCost
	quote.BaseTotal = quote.FoodsDrinksCost
	quote.ManualDiscount = req.Discount
	quote.DiscountReason = req.DiscountReason
	quote.AdditionalCost = req.AdditionalCost
	quote.AdditionalCostReason = req.AdditionalCostReason
	quote.FinalTotal = quote.BaseTotal.Sub(req.Discount).Add(req.AdditionalCost)

	if err := h.store.ShopCheckout(c.Request.Context(), quote, req.Items); err != nil {
		writeError(c, err)
		return
	}

	h.menu.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, quote)
}
