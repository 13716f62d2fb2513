package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetRooms handles GET /api/hostels/:hostel_id/rooms, the bed grid for one
// hostel tab: every room with its beds and occupant info.
func (h *Handler) GetRooms(c *gin.Context) {
	hostelID, err := strconv.ParseInt(c.Param("hostel_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hostel id"})
		return
	}

	rooms, err := h.store.ListRooms(c.Request.Context(), hostelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

type countRequest struct {
	Count int `json:"count" binding:"required,min=1"`
}

// AddRooms handles POST /api/hostels/:hostel_id/rooms.
func (h *Handler) AddRooms(c *gin.Context) {
	hostelID, err := strconv.ParseInt(c.Param("hostel_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hostel id"})
		return
	}

	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Count > h.limits.MaxRoomsPerHostel {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("count exceeds the limit of %d", h.limits.MaxRoomsPerHostel)})
		return
	}

	rooms, err := h.store.AddRooms(c.Request.Context(), hostelID, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rooms)
}

// RemoveRooms handles DELETE /api/hostels/:hostel_id/rooms. Only rooms with
// no occupied bed are removed; zero eligible rooms is reported, not an error.
func (h *Handler) RemoveRooms(c *gin.Context) {
	hostelID, err := strconv.ParseInt(c.Param("hostel_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hostel id"})
		return
	}

	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed, err := h.store.RemoveEmptyRooms(c.Request.Context(), hostelID, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"removed": removed}
	if removed == 0 {
		resp["notice"] = "no empty rooms to remove"
	}
	c.JSON(http.StatusOK, resp)
}

// AddBeds handles POST /api/rooms/:room_id/beds.
func (h *Handler) AddBeds(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Count > h.limits.MaxBedsPerRoom {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("count exceeds the limit of %d", h.limits.MaxBedsPerRoom)})
		return
	}

	beds, err := h.store.AddBeds(c.Request.Context(), roomID, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, beds)
}

// RemoveBeds handles DELETE /api/rooms/:room_id/beds.
func (h *Handler) RemoveBeds(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req countRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed, err := h.store.RemoveEmptyBeds(c.Request.Context(), roomID, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"removed": removed}
	if removed == 0 {
		resp["notice"] = "no empty beds to remove"
	}
	c.JSON(http.StatusOK, resp)
}
