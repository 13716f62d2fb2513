package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/alloc"
)

type allocateRequest struct {
	HostelID int64 `json:"hostel_id" binding:"required"`
	// Ordered as selected: the Nth applicant is paired with the Nth bed.
	ApplicantIDs []int64 `json:"applicant_ids" binding:"required"`
	BedIDs       []int64 `json:"bed_ids" binding:"required"`
}

// Allocate handles POST /api/allocations. Validation problems (empty
// selection, applicants outnumbering beds, unknown hostel) reject the whole
// request with zero assignments; once committing, per-pair failures are
// collected into the report and the remaining pairs still run.
func (h *Handler) Allocate(c *gin.Context) {
	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sel := alloc.NewSelection(req.ApplicantIDs, req.BedIDs)
	report, err := h.allocator.Allocate(c.Request.Context(), req.HostelID, sel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type unassignRequest struct {
	BedIDs []int64 `json:"bed_ids" binding:"required"`
}

// Unassign handles POST /api/unassignments. Each bed is released
// independently; already-empty beds count as successes.
func (h *Handler) Unassign(c *gin.Context) {
	var req unassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.allocator.Unassign(c.Request.Context(), req.BedIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
