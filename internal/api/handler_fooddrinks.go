package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gamecafe-backend/internal/model"
	"gamecafe-backend/internal/store"
)

type foodDrinkRequest struct {
	ItemName   string          `json:"item_name" binding:"required"`
	ItemType   string          `json:"item_type"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price" binding:"required"`
	Quantity   int             `json:"quantity"`
}

// ListFoodDrinks serves the menu, from Redis when the cached copy is fresh.
func (h *Handler) ListFoodDrinks(c *gin.Context) {
	ctx := c.Request.Context()
	if items, ok := h.menu.Get(ctx); ok {
		c.JSON(http.StatusOK, items)
		return
	}

	var items []model.FoodDrinkItem
	if err := h.store.DB().Order("item_name").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.menu.Set(ctx, items)
	c.JSON(http.StatusOK, items)
}

// GetFoodDrink returns one inventory entry by id.
func (h *Handler) GetFoodDrink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var item model.FoodDrinkItem
	if err := h.store.DB().First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateFoodDrink adds an inventory entry.
func (h *Handler) CreateFoodDrink(c *gin.Context) {
	var req foodDrinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := model.FoodDrinkItem{
		ItemName:   req.ItemName,
		ItemType:   req.ItemType,
		Price:      req.Price,
		TotalPrice: req.TotalPrice,
		Quantity:   req.Quantity,
	}
	if err := h.store.DB().Create(&item).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "item name already taken"})
		return
	}

	h.menu.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, item)
}

// UpdateFoodDrink edits an inventory entry. Session lines added earlier keep
// their snapshotted price.
func (h *Handler) UpdateFoodDrink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req foodDrinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item model.FoodDrinkItem
	if err := h.store.DB().First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	item.ItemName = req.ItemName
	item.ItemType = req.ItemType
	item.Price = req.Price
	item.TotalPrice = req.TotalPrice
	item.Quantity = req.Quantity

	if err := h.store.DB().Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.menu.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, item)
}

// DeleteFoodDrink removes an inventory entry.
func (h *Handler) DeleteFoodDrink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.store.DB().Delete(&model.FoodDrinkItem{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	h.menu.Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

type bulkDecreaseRequest struct {
	Items []store.ItemDecrement `json:"items" binding:"required,min=1,dive"`
}

// BulkDecrease applies a batch of stock decrements atomically.
func (h *Handler) BulkDecrease(c *gin.Context) {
	var req bulkDecreaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.BulkDecrease(c.Request.Context(), req.Items); err != nil {
		writeError(c, err)
		return
	}

	h.menu.Invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}
