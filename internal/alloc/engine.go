package alloc

import (
	"context"
	"fmt"
	"log"

	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/store"
)

// EventSink receives allocation events for the external activity log. The
// engine treats it as best-effort: a sink failure never fails the allocation
// that emitted the event.
type EventSink interface {
	BedAssigned(ctx context.Context, reg model.Registration, hostelName string)
	BedUnassigned(ctx context.Context, reg model.Registration)
}

// NopSink discards events. Used when no recorder is configured and in tests.
type NopSink struct{}

func (NopSink) BedAssigned(context.Context, model.Registration, string) {}
func (NopSink) BedUnassigned(context.Context, model.Registration)       {}

// Allocator commits operator selections against the inventory and the
// registration directory.
type Allocator struct {
	store store.Store
	sink  EventSink
}

// NewAllocator creates an allocator writing through the given store and
// emitting events to sink.
func NewAllocator(s store.Store, sink EventSink) *Allocator {
	if sink == nil {
		sink = NopSink{}
	}
	return &Allocator{store: s, sink: sink}
}

// BulkReport is the aggregated outcome of a bulk allocation or unassignment.
// Bulk operations continue past individual failures; the operator retries the
// failed items after inspecting Errors.
type BulkReport struct {
	Requested int      `json:"requested"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

func (r *BulkReport) ok(n int) {
	r.Succeeded += n
}

func (r *BulkReport) fail(err error) {
	r.Failed++
	r.Errors = append(r.Errors, err.Error())
}

// Allocate validates the selection and commits the positional applicant/bed
// pairs. Validation failures (empty selection, more applicants than beds,
// unknown hostel) reject the whole request with zero mutations; once the
// commit loop starts, a failing pair is reported and the loop continues with
// the next pair.
func (a *Allocator) Allocate(ctx context.Context, hostelID int64, sel Selection) (*BulkReport, error) {
	pairs, err := Plan(sel)
	if err != nil {
		return nil, err
	}

	hostel, err := a.store.GetHostel(ctx, hostelID)
	if err != nil {
		return nil, err
	}

	beds, err := a.store.GetBeds(ctx, sel.Beds)
	if err != nil {
		return nil, err
	}
	bedByID := make(map[int64]model.Bed, len(beds))
	for _, b := range beds {
		bedByID[b.ID] = b
	}

	regs, err := a.store.GetRegistrations(ctx, sel.Applicants)
	if err != nil {
		return nil, err
	}
	regByID := make(map[int64]model.Registration, len(regs))
	for _, r := range regs {
		regByID[r.ID] = r
	}

	assigned, err := a.store.AssignedRegistrationIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := &BulkReport{Requested: len(pairs)}
	for _, pair := range pairs {
		if err := a.commitPair(ctx, hostel, pair, bedByID, regByID, assigned); err != nil {
			report.fail(err)
			continue
		}
		report.ok(1)
	}
	return report, nil
}

// commitPair performs the three writes of one allocation: bed occupant,
// denormalized hostel name, activity event. A pair whose bed already holds
// its applicant is a retry and succeeds without re-emitting the event.
func (a *Allocator) commitPair(ctx context.Context, hostel *model.Hostel, pair Pair,
	bedByID map[int64]model.Bed, regByID map[int64]model.Registration, assigned map[int64]struct{}) error {

	bed, ok := bedByID[pair.BedID]
	if !ok {
		return fmt.Errorf("bed %d: %w", pair.BedID, store.ErrNotFound)
	}
	reg, ok := regByID[pair.RegistrationID]
	if !ok {
		return fmt.Errorf("registration %d: %w", pair.RegistrationID, store.ErrNotFound)
	}

	if bed.Room.HostelID != hostel.ID {
		return fmt.Errorf("bed %d does not belong to hostel %q", bed.ID, hostel.Name)
	}

	if bed.RegistrationID != nil {
		if *bed.RegistrationID == reg.ID {
			// Retry of an already committed pair; make sure the
			// denormalized name is in place and move on.
			return a.store.SetRegistrationHostelName(ctx, reg.ID, &hostel.Name)
		}
		return fmt.Errorf("bed %d is already occupied", bed.ID)
	}

	if _, taken := assigned[reg.ID]; taken {
		return fmt.Errorf("registration %s already holds a bed", reg.ApplicationID)
	}

	if err := a.store.SetBedOccupant(ctx, bed.ID, &reg.ID); err != nil {
		return err
	}
	assigned[reg.ID] = struct{}{}

	if err := a.store.SetRegistrationHostelName(ctx, reg.ID, &hostel.Name); err != nil {
		// The bed write already landed; surface the inconsistency so the
		// operator retries this pair, which will take the no-op path above.
		return fmt.Errorf("bed %d assigned but hostel_name not written: %w", bed.ID, err)
	}

	a.sink.BedAssigned(ctx, reg, hostel.Name)
	return nil
}

// Unassign releases the given beds and clears the occupants' denormalized
// hostel name. Beds that are already empty are no-op successes; failures are
// reported per bed and do not stop the loop.
func (a *Allocator) Unassign(ctx context.Context, bedIDs []int64) (*BulkReport, error) {
	bedIDs = dedupe(bedIDs)
	if len(bedIDs) == 0 {
		return nil, &store.ValidationError{Field: "beds", Reason: "select at least one bed"}
	}

	beds, err := a.store.GetBeds(ctx, bedIDs)
	if err != nil {
		return nil, err
	}
	bedByID := make(map[int64]model.Bed, len(beds))
	for _, b := range beds {
		bedByID[b.ID] = b
	}

	report := &BulkReport{Requested: len(bedIDs)}
	for _, id := range bedIDs {
		bed, ok := bedByID[id]
		if !ok {
			report.fail(fmt.Errorf("bed %d: %w", id, store.ErrNotFound))
			continue
		}
		if bed.RegistrationID == nil {
			report.ok(1)
			continue
		}

		if err := a.releaseBed(ctx, bed); err != nil {
			report.fail(err)
			continue
		}
		report.ok(1)
	}
	return report, nil
}

func (a *Allocator) releaseBed(ctx context.Context, bed model.Bed) error {
	regs, err := a.store.GetRegistrations(ctx, []int64{*bed.RegistrationID})
	if err != nil {
		return err
	}

	if err := a.store.SetBedOccupant(ctx, bed.ID, nil); err != nil {
		return err
	}
	if err := a.store.SetRegistrationHostelName(ctx, *bed.RegistrationID, nil); err != nil {
		return fmt.Errorf("bed %d released but hostel_name not cleared: %w", bed.ID, err)
	}

	if len(regs) == 1 {
		a.sink.BedUnassigned(ctx, regs[0])
	} else {
		// Occupant row missing from the registration table; the bed is
		// still released, just without an audit subject.
		log.Printf("bed %d released but occupant %d not found in registrations", bed.ID, *bed.RegistrationID)
	}
	return nil
}

// GroupView assembles the grouped applicant picker: groups over all eligible
// registrations, annotated with which members already hold beds, filtered by
// the operator's search query.
func (a *Allocator) GroupView(ctx context.Context, query string) ([]Group, map[int64]struct{}, error) {
	eligible, err := a.store.ListEligibleRegistrations(ctx)
	if err != nil {
		return nil, nil, err
	}
	assigned, err := a.store.AssignedRegistrationIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	return FilterGroups(BuildGroups(eligible), query), assigned, nil
}
