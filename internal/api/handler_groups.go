package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/alloc"
	"hostel-allocation-backend/internal/model"
)

// memberResponse is one registration inside a group, with its housing state.
type memberResponse struct {
	ID            int64   `json:"id"`
	ApplicationID string  `json:"application_id"`
	Name          string  `json:"name"`
	Assigned      bool    `json:"assigned"`
	HostelName    *string `json:"hostel_name,omitempty"`
}

// groupResponse is one applicant group in the picker, primary first.
type groupResponse struct {
	PrimaryApplicationID string           `json:"primary_application_id"`
	Members              []memberResponse `json:"members"`
	UnassignedCount      int              `json:"unassigned_count"`
	FullyHoused          bool             `json:"fully_housed"`
}

// GetGroups handles GET /api/groups?q=. It returns the grouped applicant view
// the operator selects from: every eligible registration in exactly one
// group, annotated with which members already hold beds. Fully housed groups
// are included but carry zero selectable members.
func (h *Handler) GetGroups(c *gin.Context) {
	groups, assigned, err := h.allocator.GroupView(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]groupResponse, 0, len(groups))
	for i := range groups {
		responses = append(responses, toGroupResponse(&groups[i], assigned))
	}
	c.JSON(http.StatusOK, responses)
}

func toGroupResponse(g *alloc.Group, assigned map[int64]struct{}) groupResponse {
	members := g.Members()
	resp := groupResponse{
		PrimaryApplicationID: g.Primary.ApplicationID,
		Members:              make([]memberResponse, 0, len(members)),
	}
	for _, m := range members {
		resp.Members = append(resp.Members, toMemberResponse(m, assigned))
	}
	resp.UnassignedCount = len(g.UnassignedMembers(assigned))
	resp.FullyHoused = resp.UnassignedCount == 0
	return resp
}

func toMemberResponse(m model.Registration, assigned map[int64]struct{}) memberResponse {
	_, isAssigned := assigned[m.ID]
	return memberResponse{
		ID:            m.ID,
		ApplicationID: m.ApplicationID,
		Name:          m.Name,
		Assigned:      isAssigned,
		HostelName:    m.HostelName,
	}
}
