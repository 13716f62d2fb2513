package model

import "time"

// Hostel represents a housing facility offered to on-campus registrants.
type Hostel struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	TotalRooms  int       `gorm:"not null" json:"total_rooms"`
	BedsPerRoom int       `gorm:"not null" json:"beds_per_room"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Rooms []Room `gorm:"foreignKey:HostelID" json:"rooms,omitempty"`
}
