package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// CreateHostel creates the hostel, its rooms numbered 1..RoomCount and the
// beds of each room numbered 1..n, all in one transaction so a failure
// partway through leaves nothing behind.
func (s *gormStore) CreateHostel(ctx context.Context, p CreateHostelParams) (*model.Hostel, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.RoomCount < 1 {
		return nil, &ValidationError{Field: "room_count", Reason: "must be at least 1"}
	}
	if p.DefaultBeds < 1 {
		return nil, &ValidationError{Field: "beds_per_room", Reason: "must be at least 1"}
	}
	for pos, n := range p.BedOverrides {
		if pos < 1 || pos > p.RoomCount {
			return nil, &ValidationError{Field: "bed_overrides", Reason: fmt.Sprintf("room position %d out of range", pos)}
		}
		if n < 1 {
			return nil, &ValidationError{Field: "bed_overrides", Reason: fmt.Sprintf("room %d: bed count must be at least 1", pos)}
		}
	}

	hostel := model.Hostel{
		Name:        strings.TrimSpace(p.Name),
		TotalRooms:  p.RoomCount,
		BedsPerRoom: p.DefaultBeds,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&hostel).Error; err != nil {
			return fmt.Errorf("failed to create hostel: %w", err)
		}
		for i := 1; i <= p.RoomCount; i++ {
			beds := p.DefaultBeds
			if n, ok := p.BedOverrides[i]; ok {
				beds = n
			}
			if _, err := createRoomWithBeds(tx, hostel.ID, strconv.Itoa(i), beds); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &hostel, nil
}

// createRoomWithBeds inserts one room and its beds numbered 1..beds.
func createRoomWithBeds(tx *gorm.DB, hostelID int64, roomNumber string, beds int) (*model.Room, error) {
	room := model.Room{
		HostelID:   hostelID,
		RoomNumber: roomNumber,
		BedsCount:  beds,
	}
	if err := tx.Create(&room).Error; err != nil {
		return nil, fmt.Errorf("failed to create room %s: %w", roomNumber, err)
	}

	bedRows := make([]model.Bed, beds)
	for i := range bedRows {
		bedRows[i] = model.Bed{RoomID: room.ID, BedNumber: i + 1}
	}
	if err := tx.Create(&bedRows).Error; err != nil {
		return nil, fmt.Errorf("failed to create beds for room %s: %w", roomNumber, err)
	}
	return &room, nil
}

// ListHostels returns all hostels with live room/bed/occupancy aggregates,
// computed with two grouped queries instead of per-hostel round trips.
func (s *gormStore) ListHostels(ctx context.Context) ([]HostelSummary, error) {
	var hostels []model.Hostel
	if err := s.db.WithContext(ctx).Order("id").Find(&hostels).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve hostels: %w", err)
	}

	type roomAgg struct {
		HostelID  int64
		RoomCount int64
	}
	var roomAggs []roomAgg
	if err := s.db.WithContext(ctx).
		Model(&model.Room{}).
		Select("hostel_id as hostel_id, COUNT(*) as room_count").
		Group("hostel_id").
		Scan(&roomAggs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate rooms: %w", err)
	}

	type bedAgg struct {
		HostelID     int64
		BedCount     int64
		OccupiedBeds int64
	}
	var bedAggs []bedAgg
	if err := s.db.WithContext(ctx).
		Model(&model.Bed{}).
		Select("rooms.hostel_id as hostel_id, COUNT(*) as bed_count, COUNT(bed_assignments.registration_id) as occupied_beds").
		Joins("JOIN rooms ON rooms.id = bed_assignments.room_id").
		Group("rooms.hostel_id").
		Scan(&bedAggs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate beds: %w", err)
	}

	roomMap := make(map[int64]roomAgg, len(roomAggs))
	for _, a := range roomAggs {
		roomMap[a.HostelID] = a
	}
	bedMap := make(map[int64]bedAgg, len(bedAggs))
	for _, a := range bedAggs {
		bedMap[a.HostelID] = a
	}

	summaries := make([]HostelSummary, 0, len(hostels))
	for _, h := range hostels {
		summaries = append(summaries, HostelSummary{
			Hostel:       h,
			RoomCount:    roomMap[h.ID].RoomCount,
			BedCount:     bedMap[h.ID].BedCount,
			OccupiedBeds: bedMap[h.ID].OccupiedBeds,
		})
	}
	return summaries, nil
}

func (s *gormStore) GetHostel(ctx context.Context, id int64) (*model.Hostel, error) {
	var hostel model.Hostel
	if err := s.db.WithContext(ctx).First(&hostel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("hostel %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &hostel, nil
}

func (s *gormStore) RenameHostel(ctx context.Context, id int64, name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hostel model.Hostel
		if err := tx.First(&hostel, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("hostel %d: %w", id, ErrNotFound)
			}
			return err
		}
		if err := tx.Model(&hostel).Update("name", strings.TrimSpace(name)).Error; err != nil {
			return fmt.Errorf("failed to rename hostel %d: %w", id, err)
		}
		return nil
	})
}

// DeleteHostel cascades delete to all rooms and beds of the hostel. While any
// bed is occupied the delete fails with HostelOccupiedError carrying the
// occupied count; with force the occupants' denormalized hostel_name is
// cleared before the cascade so no registration keeps pointing at a hostel
// that no longer exists.
func (s *gormStore) DeleteHostel(ctx context.Context, id int64, force bool) (int, error) {
	var evicted int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hostel model.Hostel
		if err := tx.First(&hostel, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("hostel %d: %w", id, ErrNotFound)
			}
			return err
		}

		var occupantIDs []int64
		if err := tx.Model(&model.Bed{}).
			Joins("JOIN rooms ON rooms.id = bed_assignments.room_id").
			Where("rooms.hostel_id = ? AND bed_assignments.registration_id IS NOT NULL", id).
			Pluck("bed_assignments.registration_id", &occupantIDs).Error; err != nil {
			return fmt.Errorf("failed to count occupied beds: %w", err)
		}

		if len(occupantIDs) > 0 && !force {
			return &HostelOccupiedError{HostelID: id, Occupied: len(occupantIDs)}
		}

		if len(occupantIDs) > 0 {
			if err := tx.Model(&model.Registration{}).
				Where("id IN ?", occupantIDs).
				Update("hostel_name", nil).Error; err != nil {
				return fmt.Errorf("failed to clear hostel_name of evicted occupants: %w", err)
			}
		}
		evicted = len(occupantIDs)

		roomIDs := tx.Model(&model.Room{}).Select("id").Where("hostel_id = ?", id)
		if err := tx.Where("room_id IN (?)", roomIDs).Delete(&model.Bed{}).Error; err != nil {
			return fmt.Errorf("failed to delete beds of hostel %d: %w", id, err)
		}
		if err := tx.Where("hostel_id = ?", id).Delete(&model.Room{}).Error; err != nil {
			return fmt.Errorf("failed to delete rooms of hostel %d: %w", id, err)
		}
		if err := tx.Delete(&model.Hostel{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete hostel %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return evicted, nil
}

// AddRooms appends count rooms to the hostel, numbering them after the
// current maximum room number. Each new room gets the hostel's default
// beds-per-room.
func (s *gormStore) AddRooms(ctx context.Context, hostelID int64, count int) ([]model.Room, error) {
	if count < 1 {
		return nil, &ValidationError{Field: "count", Reason: "must be at least 1"}
	}

	var created []model.Room
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hostel model.Hostel
		if err := tx.First(&hostel, hostelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("hostel %d: %w", hostelID, ErrNotFound)
			}
			return err
		}

		next := maxRoomNumber(tx, hostelID) + 1
		for i := 0; i < count; i++ {
			number := strconv.Itoa(next + i)
			room, err := createRoomWithBeds(tx, hostelID, number, hostel.BedsPerRoom)
			if err != nil {
				return err
			}
			created = append(created, *room)
		}

		return tx.Model(&hostel).Update("total_rooms", hostel.TotalRooms+count).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// maxRoomNumber returns the highest numeric room number in the hostel, 0 when
// the hostel has no rooms. Room numbers are created by this store as decimal
// strings; anything else is skipped.
func maxRoomNumber(tx *gorm.DB, hostelID int64) int {
	var numbers []string
	tx.Model(&model.Room{}).Where("hostel_id = ?", hostelID).Pluck("room_number", &numbers)

	max := 0
	for _, raw := range numbers {
		if n, err := strconv.Atoi(raw); err == nil && n > max {
			max = n
		}
	}
	return max
}

// RemoveEmptyRooms deletes up to count rooms that have no occupied bed,
// newest rooms first. Rooms with any occupant are never candidates. Returns
// the number actually removed; zero eligible rooms is a no-op, not an error.
func (s *gormStore) RemoveEmptyRooms(ctx context.Context, hostelID int64, count int) (int, error) {
	if count < 1 {
		return 0, &ValidationError{Field: "count", Reason: "must be at least 1"}
	}

	removed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hostel model.Hostel
		if err := tx.First(&hostel, hostelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("hostel %d: %w", hostelID, ErrNotFound)
			}
			return err
		}

		occupiedRooms := tx.Model(&model.Bed{}).
			Select("room_id").
			Where("registration_id IS NOT NULL")

		var candidates []model.Room
		if err := tx.Where("hostel_id = ? AND id NOT IN (?)", hostelID, occupiedRooms).
			Order("id DESC").
			Limit(count).
			Find(&candidates).Error; err != nil {
			return fmt.Errorf("failed to find removable rooms: %w", err)
		}
		if len(candidates) == 0 {
			return nil
		}

		ids := make([]int64, len(candidates))
		for i, r := range candidates {
			ids[i] = r.ID
		}
		if err := tx.Where("room_id IN ?", ids).Delete(&model.Bed{}).Error; err != nil {
			return fmt.Errorf("failed to delete beds of removed rooms: %w", err)
		}
		if err := tx.Delete(&model.Room{}, ids).Error; err != nil {
			return fmt.Errorf("failed to delete rooms: %w", err)
		}

		removed = len(candidates)
		return tx.Model(&hostel).Update("total_rooms", hostel.TotalRooms-removed).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// ListRooms returns the rooms of a hostel with their beds and occupants,
// ordered for stable display.
func (s *gormStore) ListRooms(ctx context.Context, hostelID int64) ([]model.Room, error) {
	if _, err := s.GetHostel(ctx, hostelID); err != nil {
		return nil, err
	}
	var rooms []model.Room
	err := s.db.WithContext(ctx).
		Preload("Beds", func(db *gorm.DB) *gorm.DB { return db.Order("bed_number") }).
		Preload("Beds.Registration").
		Where("hostel_id = ?", hostelID).
		Order("id").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve rooms: %w", err)
	}
	return rooms, nil
}

// AddBeds appends count beds to the room, numbering them after the current
// maximum bed number. Numbers of removed beds are never reused.
func (s *gormStore) AddBeds(ctx context.Context, roomID int64, count int) ([]model.Bed, error) {
	if count < 1 {
		return nil, &ValidationError{Field: "count", Reason: "must be at least 1"}
	}

	var created []model.Bed
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room model.Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("room %d: %w", roomID, ErrNotFound)
			}
			return err
		}

		var maxNumber int
		if err := tx.Model(&model.Bed{}).
			Where("room_id = ?", roomID).
			Select("COALESCE(MAX(bed_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return fmt.Errorf("failed to find max bed number: %w", err)
		}

		created = make([]model.Bed, count)
		for i := range created {
			created[i] = model.Bed{RoomID: roomID, BedNumber: maxNumber + 1 + i}
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create beds: %w", err)
		}

		return tx.Model(&room).Update("beds_count", room.BedsCount+count).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RemoveEmptyBeds deletes up to count unoccupied beds from the room, highest
// bed numbers first. Returns the number removed; zero eligible is a no-op.
func (s *gormStore) RemoveEmptyBeds(ctx context.Context, roomID int64, count int) (int, error) {
	if count < 1 {
		return 0, &ValidationError{Field: "count", Reason: "must be at least 1"}
	}

	removed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room model.Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("room %d: %w", roomID, ErrNotFound)
			}
			return err
		}

		var candidates []model.Bed
		if err := tx.Where("room_id = ? AND registration_id IS NULL", roomID).
			Order("bed_number DESC").
			Limit(count).
			Find(&candidates).Error; err != nil {
			return fmt.Errorf("failed to find removable beds: %w", err)
		}
		if len(candidates) == 0 {
			return nil
		}

		ids := make([]int64, len(candidates))
		for i, b := range candidates {
			ids[i] = b.ID
		}
		if err := tx.Delete(&model.Bed{}, ids).Error; err != nil {
			return fmt.Errorf("failed to delete beds: %w", err)
		}

		removed = len(candidates)
		return tx.Model(&room).Update("beds_count", room.BedsCount-removed).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *gormStore) GetBeds(ctx context.Context, ids []int64) ([]model.Bed, error) {
	var beds []model.Bed
	if len(ids) == 0 {
		return beds, nil
	}
	if err := s.db.WithContext(ctx).Preload("Room").Find(&beds, ids).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve beds: %w", err)
	}
	return beds, nil
}

// SetBedOccupant sets or clears the occupant link of one bed. Writing the
// value the bed already holds is a no-op, which makes retries of a partially
// failed bulk operation safe. Cross-bed uniqueness of the occupant is the
// caller's job plus the storage-level unique index.
func (s *gormStore) SetBedOccupant(ctx context.Context, bedID int64, registrationID *int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bed model.Bed
		if err := tx.First(&bed, bedID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("bed %d: %w", bedID, ErrNotFound)
			}
			return err
		}

		if occupantEqual(bed.RegistrationID, registrationID) {
			return nil
		}

		if err := tx.Model(&bed).Update("registration_id", registrationID).Error; err != nil {
			return fmt.Errorf("failed to update bed %d occupant: %w", bedID, err)
		}
		return nil
	})
}

func occupantEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
