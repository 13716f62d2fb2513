package model

import "time"

// Bed is the smallest housing unit. RegistrationID is the occupant link; the
// partial unique index created in db.Init guarantees a registration occupies
// at most one bed system-wide even under concurrent admin sessions.
type Bed struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	RoomID         int64     `gorm:"index;not null" json:"room_id"`
	BedNumber      int       `gorm:"not null" json:"bed_number"`
	RegistrationID *int64    `gorm:"index" json:"registration_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	Room         Room          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Registration *Registration `gorm:"foreignKey:RegistrationID" json:"registration,omitempty"`
}

// TableName keeps the storage name used by the wider registration system.
func (Bed) TableName() string {
	return "bed_assignments"
}
