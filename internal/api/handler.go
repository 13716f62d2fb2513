package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/alloc"
	"hostel-allocation-backend/internal/store"
)

// InventoryLimits bounds structural mutations per request. A mistyped count
// in the admin form should fail fast instead of creating thousands of rows.
type InventoryLimits struct {
	MaxRoomsPerHostel int
	MaxBedsPerRoom    int
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	allocator *alloc.Allocator
	webpush   *webpush.Options
	limits    InventoryLimits
}

// NewHandler creates a new API handler. Zero-valued limits get defaults.
func NewHandler(s store.Store, allocator *alloc.Allocator, webpushOptions *webpush.Options, limits InventoryLimits) *Handler {
	if limits.MaxRoomsPerHostel <= 0 {
		limits.MaxRoomsPerHostel = 500
	}
	if limits.MaxBedsPerRoom <= 0 {
		limits.MaxBedsPerRoom = 20
	}
	return &Handler{
		store:     s,
		allocator: allocator,
		webpush:   webpushOptions,
		limits:    limits,
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Everything
// unrecognized is a storage/backend failure and stays generic.
func respondError(c *gin.Context, err error) {
	var (
		validation *store.ValidationError
		occupied   *store.HostelOccupiedError
		capacity   *alloc.InsufficientCapacityError
	)

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &occupied):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":         occupied.Error(),
			"occupied_beds": occupied.Occupied,
		})
	case errors.As(err, &capacity):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":     capacity.Error(),
			"shortfall": capacity.Shortfall(),
		})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "operation failed, please retry"})
	}
}
