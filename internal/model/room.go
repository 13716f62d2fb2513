package model

import "time"

// Room is a subdivision of a hostel. RoomNumber is assigned sequentially at
// creation and is unique within its hostel; numbers of deleted rooms are not
// reused within the same add batch.
type Room struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	HostelID   int64  `gorm:"index;not null;uniqueIndex:idx_room_number_per_hostel" json:"hostel_id"`
	RoomNumber string `gorm:"size:32;not null;uniqueIndex:idx_room_number_per_hostel" json:"room_number"`
	// BedsCount mirrors the number of Bed rows referencing this room. Every
	// capacity change goes through the store so the two cannot drift.
	BedsCount int       `gorm:"not null" json:"beds_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Hostel Hostel `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Beds   []Bed  `gorm:"foreignKey:RoomID" json:"beds,omitempty"`
}
