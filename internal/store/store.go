package store

import (
	"context"

	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// CreateHostelParams describes a new hostel. BedOverrides lets individual
// rooms (keyed by 1-based room position) deviate from DefaultBeds, so a
// hostel can mix, say, 2-bed and 6-bed rooms at creation time.
type CreateHostelParams struct {
	Name         string
	RoomCount    int
	DefaultBeds  int
	BedOverrides map[int]int
}

// HostelSummary is the list view of a hostel with live occupancy aggregates.
type HostelSummary struct {
	model.Hostel
	RoomCount    int64 `json:"room_count"`
	BedCount     int64 `json:"bed_count"`
	OccupiedBeds int64 `json:"occupied_beds"`
}

// Store defines the interface for all database operations of the allocation
// core. The inventory methods keep Room.BedsCount equal to the number of Bed
// rows at all times; callers never touch bed rows directly.
type Store interface {
	DB() *gorm.DB

	// Hostel/room/bed inventory.
	CreateHostel(ctx context.Context, p CreateHostelParams) (*model.Hostel, error)
	ListHostels(ctx context.Context) ([]HostelSummary, error)
	GetHostel(ctx context.Context, id int64) (*model.Hostel, error)
	RenameHostel(ctx context.Context, id int64, name string) error
	DeleteHostel(ctx context.Context, id int64, force bool) (evicted int, err error)
	AddRooms(ctx context.Context, hostelID int64, count int) ([]model.Room, error)
	RemoveEmptyRooms(ctx context.Context, hostelID int64, count int) (removed int, err error)
	ListRooms(ctx context.Context, hostelID int64) ([]model.Room, error)
	AddBeds(ctx context.Context, roomID int64, count int) ([]model.Bed, error)
	RemoveEmptyBeds(ctx context.Context, roomID int64, count int) (removed int, err error)
	GetBeds(ctx context.Context, ids []int64) ([]model.Bed, error)
	SetBedOccupant(ctx context.Context, bedID int64, registrationID *int64) error

	// Registration directory (external table; reads plus the one
	// denormalized field this core owns).
	ListEligibleRegistrations(ctx context.Context) ([]model.Registration, error)
	AssignedRegistrationIDs(ctx context.Context) (map[int64]struct{}, error)
	GetRegistrations(ctx context.Context, ids []int64) ([]model.Registration, error)
	SetRegistrationHostelName(ctx context.Context, registrationID int64, hostelName *string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}
