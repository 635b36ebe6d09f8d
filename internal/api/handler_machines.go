package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"gamecafe-backend/internal/model"
)

type machineRequest struct {
	MachineType        string          `json:"machine_type" binding:"required"`
	MachineName        string          `json:"machine_name" binding:"required"`
	PricePerHourSingle decimal.Decimal `json:"price_per_hour_single" binding:"required"`
	PricePerHourMulti  decimal.Decimal `json:"price_per_hour_multi" binding:"required"`
	IsAvailable        bool            `json:"is_available"`
	Room               string          `json:"room"`
	ImageLink          string          `json:"image_link"`
}

// ListMachines returns all machines ordered by name.
func (h *Handler) ListMachines(c *gin.Context) {
	var machines []model.Machine
	if err := h.store.DB().Order("machine_name").Find(&machines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMachine returns one machine by id.
func (h *Handler) GetMachine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var machine model.Machine
	if err := h.store.DB().First(&machine, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, machine)
}

// CreateMachine registers a new machine.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req machineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine := model.Machine{
		MachineType:        req.MachineType,
		MachineName:        req.MachineName,
		PricePerHourSingle: req.PricePerHourSingle,
		PricePerHourMulti:  req.PricePerHourMulti,
		IsAvailable:        req.IsAvailable,
		Room:               req.Room,
		ImageLink:          req.ImageLink,
	}
	if err := h.store.DB().Create(&machine).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "machine name already taken"})
		return
	}
	c.JSON(http.StatusCreated, machine)
}

// UpdateMachine replaces a machine's editable fields. Running sessions keep
// their snapshotted pricing.
func (h *Handler) UpdateMachine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req machineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var machine model.Machine
	if err := h.store.DB().First(&machine, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	machine.MachineType = req.MachineType
	machine.MachineName = req.MachineName
	machine.PricePerHourSingle = req.PricePerHourSingle
	machine.PricePerHourMulti = req.PricePerHourMulti
	machine.IsAvailable = req.IsAvailable
	machine.Room = req.Room
	machine.ImageLink = req.ImageLink

	if err := h.store.DB().Save(&machine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, machine)
}

// DeleteMachine removes a machine. Sessions keep their snapshot so history
// stays intact.
func (h *Handler) DeleteMachine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res := h.store.DB().Delete(&model.Machine{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "machine not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
