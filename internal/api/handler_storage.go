package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gamecafe-backend/internal/model"
)

type storageItemRequest struct {
	ItemName string `json:"item_name" binding:"required"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
	Note     string `json:"note"`
}

// ListStorage returns the back-room stock.
func (h *Handler) ListStorage(c *gin.Context) {
	var items []model.StorageItem
	if err := h.store.DB().Order("item_name").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateStorageItem adds a back-room stock entry.
func (h *Handler) CreateStorageItem(c *gin.Context) {
	var req storageItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := model.StorageItem{
		ItemName: req.ItemName,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Note:     req.Note,
	}
	if err := h.store.DB().Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateStorageItem edits a back-room stock entry.
func (h *Handler) UpdateStorageItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req storageItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item model.StorageItem
	if err := h.store.DB().First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "storage item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	item.ItemName = req.ItemName
	item.Quantity = req.Quantity
	item.Unit = req.Unit
	item.Note = req.Note

	if err := h.store.DB().Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteStorageItem removes a back-room stock entry.
func (h *Handler) DeleteStorageItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.store.DB().Delete(&model.StorageItem{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "storage item not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
