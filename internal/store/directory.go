package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// ListEligibleRegistrations returns the registrations that qualify for
// housing: approved and staying on campus. Ordered by application id so the
// grouped view is stable across reloads.
func (s *gormStore) ListEligibleRegistrations(ctx context.Context) ([]model.Registration, error) {
	var regs []model.Registration
	err := s.db.WithContext(ctx).
		Where("registration_status = ? AND stay_type = ?", model.StatusApproved, model.StayTypeOnCampus).
		Order("application_id").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve eligible registrations: %w", err)
	}
	return regs, nil
}

// AssignedRegistrationIDs returns the ids of registrations currently
// occupying some bed.
func (s *gormStore) AssignedRegistrationIDs(ctx context.Context) (map[int64]struct{}, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&model.Bed{}).
		Where("registration_id IS NOT NULL").
		Pluck("registration_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve assigned registration ids: %w", err)
	}

	assigned := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		assigned[id] = struct{}{}
	}
	return assigned, nil
}

func (s *gormStore) GetRegistrations(ctx context.Context, ids []int64) ([]model.Registration, error) {
	var regs []model.Registration
	if len(ids) == 0 {
		return regs, nil
	}
	if err := s.db.WithContext(ctx).Find(&regs, ids).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve registrations: %w", err)
	}
	return regs, nil
}

// SetRegistrationHostelName writes the denormalized hostel name, the single
// registration field this core owns. nil clears it.
func (s *gormStore) SetRegistrationHostelName(ctx context.Context, registrationID int64, hostelName *string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg model.Registration
		if err := tx.First(&reg, registrationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("registration %d: %w", registrationID, ErrNotFound)
			}
			return err
		}
		if err := tx.Model(&reg).Update("hostel_name", hostelName).Error; err != nil {
			return fmt.Errorf("failed to update hostel_name for registration %d: %w", registrationID, err)
		}
		return nil
	})
}
