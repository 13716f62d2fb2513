package model

import (
	"time"

	"gorm.io/datatypes"
)

// Activity-log actions emitted by the allocation core.
const (
	ActionBedAssignment   = "bed_assignment"
	ActionBedUnassignment = "bed_unassignment"
)

// ActivityLog is one audit row consumed by the external admin activity feed.
// Details carries the action-specific payload ({name, hostel} for
// assignments, {name} for unassignments).
type ActivityLog struct {
	ID                   string         `gorm:"primaryKey;size:36" json:"id"`
	Action               string         `gorm:"size:64;not null;index" json:"action"`
	TargetRegistrationID int64          `gorm:"not null;index" json:"target_registration_id"`
	TargetApplicationID  string         `gorm:"size:64;not null" json:"target_application_id"`
	Details              datatypes.JSON `json:"details"`
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
}
