package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gamecafe-backend/internal/model"
	"gamecafe-backend/internal/report"
	"gamecafe-backend/internal/timefmt"
)

// GetReport aggregates income, expenses and food profits for the requested
// window. Admin only.
func (h *Handler) GetReport(c *gin.Context) {
	window := c.Query("window")
	date, err := timefmt.Parse(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be DD/MM/YYYY"})
		return
	}

	w := report.Window{Granularity: window, Date: date}
	if err := w.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var quotes []model.Quote
	if err := h.store.DB().Preload("FoodDrinks").Find(&quotes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var payments []model.Payment
	if err := h.store.DB().Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var inventory []model.FoodDrinkItem
	if err := h.store.DB().Find(&inventory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summary, err := report.Build(w, quotes, payments, inventory)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetMachineReport aggregates usage income for one machine name. Admin only.
func (h *Handler) GetMachineReport(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "machine name is required"})
		return
	}

	var quotes []model.Quote
	if err := h.store.DB().Where("machine_name = ?", name).Find(&quotes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report.BuildMachine(name, quotes))
}
