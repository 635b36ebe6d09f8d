package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"gamecafe-backend/config"
	"gamecafe-backend/internal/billing"
	"gamecafe-backend/internal/cache"
	"gamecafe-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg     *config.Config
	store   store.Store
	menu    *cache.Menu
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(cfg *config.Config, s store.Store, menu *cache.Menu, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   s,
		menu:    menu,
		webpush: webpushOptions,
	}
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// writeError maps store and billing sentinels onto status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrStaleVersion):
		c.JSON(http.StatusConflict, gin.H{"error": "session changed since last read, refetch and retry"})
	case errors.Is(err, store.ErrMachineOccupied),
		errors.Is(err, store.ErrMachineUnknown),
		errors.Is(err, store.ErrUnknownItem),
		errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrBadMode),
		errors.Is(err, billing.ErrSessionEnded),
		errors.Is(err, billing.ErrSessionOpen),
		errors.Is(err, billing.ErrLineOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
