package model

import "time"

// Registration status and stay-type values written by the external approval
// workflow. Only approved on-campus registrations are eligible for housing.
const (
	StatusApproved    = "approved"
	StayTypeOnCampus  = "on-campus"
	StayTypeOffCampus = "off-campus"
)

// Registration is owned by the external registration/approval workflow. This
// service reads it to build the housing directory and writes exactly one
// field: the denormalized HostelName, kept consistent with the bed link.
type Registration struct {
	ID int64 `gorm:"primaryKey" json:"id"`
	// ApplicationID is the public application code, e.g. "ALM-2026-0042".
	ApplicationID string `gorm:"uniqueIndex;size:64;not null" json:"application_id"`
	// ParentApplicationID links an additional attendee to the primary
	// applicant's ApplicationID. Nil for primaries.
	ParentApplicationID *string   `gorm:"size:64;index" json:"parent_application_id"`
	Name                string    `gorm:"size:256;not null" json:"name"`
	RegistrationStatus  string    `gorm:"size:32;not null;index" json:"registration_status"`
	StayType            string    `gorm:"size:32;not null" json:"stay_type"`
	HostelName          *string   `gorm:"size:128" json:"hostel_name"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// IsPrimary reports whether this registration heads its applicant group.
func (r *Registration) IsPrimary() bool {
	return r.ParentApplicationID == nil || *r.ParentApplicationID == ""
}
