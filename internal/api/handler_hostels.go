package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/store"
)

// GetHostels handles GET /api/hostels.
func (h *Handler) GetHostels(c *gin.Context) {
	summaries, err := h.store.ListHostels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

type createHostelRequest struct {
	Name        string `json:"name" binding:"required"`
	RoomCount   int    `json:"room_count" binding:"required,min=1"`
	BedsPerRoom int    `json:"beds_per_room" binding:"required,min=1"`
	// BedOverrides maps a 1-based room position to a bed count that
	// deviates from beds_per_room, e.g. {"3": 6}.
	BedOverrides map[string]int `json:"bed_overrides"`
}

// CreateHostel handles POST /api/hostels.
func (h *Handler) CreateHostel(c *gin.Context) {
	var req createHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RoomCount > h.limits.MaxRoomsPerHostel {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("room_count exceeds the limit of %d", h.limits.MaxRoomsPerHostel)})
		return
	}
	if req.BedsPerRoom > h.limits.MaxBedsPerRoom {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("beds_per_room exceeds the limit of %d", h.limits.MaxBedsPerRoom)})
		return
	}

	overrides := make(map[int]int, len(req.BedOverrides))
	for key, beds := range req.BedOverrides {
		pos, err := strconv.Atoi(key)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bed_overrides keys must be room positions"})
			return
		}
		if beds > h.limits.MaxBedsPerRoom {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bed_overrides exceeds the limit of %d", h.limits.MaxBedsPerRoom)})
			return
		}
		overrides[pos] = beds
	}

	hostel, err := h.store.CreateHostel(c.Request.Context(), store.CreateHostelParams{
		Name:         req.Name,
		RoomCount:    req.RoomCount,
		DefaultBeds:  req.BedsPerRoom,
		BedOverrides: overrides,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hostel)
}

type renameHostelRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameHostel handles PATCH /api/hostels/:hostel_id.
func (h *Handler) RenameHostel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("hostel_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hostel id"})
		return
	}

	var req renameHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.RenameHostel(c.Request.Context(), id, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteHostel handles DELETE /api/hostels/:hostel_id. Deleting a hostel with
// occupied beds is refused with 409 and the occupied count; the operator must
// resubmit with ?force=true to evict.
func (h *Handler) DeleteHostel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("hostel_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hostel id"})
		return
	}
	force := c.Query("force") == "true"

	evicted, err := h.store.DeleteHostel(c.Request.Context(), id, force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evicted_occupants": evicted})
}
