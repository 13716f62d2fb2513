package model

import "time"

// PushSubscription holds a browser push subscription for an admin who wants
// to be notified when beds are assigned or released.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
