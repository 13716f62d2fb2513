package alloc

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/db"
	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/store"
)

// captureSink records emitted events for assertions.
type captureSink struct {
	assigned   []string // "APP-ID@Hostel"
	unassigned []string // "APP-ID"
}

func (c *captureSink) BedAssigned(_ context.Context, reg model.Registration, hostelName string) {
	c.assigned = append(c.assigned, reg.ApplicationID+"@"+hostelName)
}

func (c *captureSink) BedUnassigned(_ context.Context, reg model.Registration) {
	c.unassigned = append(c.unassigned, reg.ApplicationID)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))
	t.Cleanup(func() {
		sqlDB, _ := testDB.DB()
		sqlDB.Close()
	})
	return testDB
}

// seedHostel creates a hostel with the given layout and returns it with its
// bed ids in room/bed-number order.
func seedHostel(t *testing.T, s store.Store, name string, rooms, bedsPerRoom int) (*model.Hostel, []int64) {
	t.Helper()
	hostel, err := s.CreateHostel(context.Background(), store.CreateHostelParams{
		Name:        name,
		RoomCount:   rooms,
		DefaultBeds: bedsPerRoom,
	})
	require.NoError(t, err)

	listed, err := s.ListRooms(context.Background(), hostel.ID)
	require.NoError(t, err)

	var bedIDs []int64
	for _, room := range listed {
		for _, bed := range room.Beds {
			bedIDs = append(bedIDs, bed.ID)
		}
	}
	return hostel, bedIDs
}

func seedRegistration(t *testing.T, gdb *gorm.DB, r model.Registration) model.Registration {
	t.Helper()
	require.NoError(t, gdb.Create(&r).Error)
	return r
}

func TestAllocatePositionalPairing(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	sink := &captureSink{}
	allocator := NewAllocator(s, sink)
	ctx := context.Background()

	hostel, bedIDs := seedHostel(t, s, "Takshila", 2, 2)
	require.Len(t, bedIDs, 4)

	a1 := seedRegistration(t, gdb, reg(0, "ALM-001", "Asha Rao", nil))
	a2 := seedRegistration(t, gdb, reg(0, "ALM-001-D1", "Meera Rao", strPtr("ALM-001")))

	report, err := allocator.Allocate(ctx, hostel.ID,
		NewSelection([]int64{a1.ID, a2.ID}, []int64{bedIDs[0], bedIDs[1]}))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Failed)

	// Nth applicant landed on Nth bed.
	beds, err := s.GetBeds(ctx, []int64{bedIDs[0], bedIDs[1]})
	require.NoError(t, err)
	occupants := map[int64]int64{}
	for _, b := range beds {
		require.NotNil(t, b.RegistrationID)
		occupants[b.ID] = *b.RegistrationID
	}
	assert.Equal(t, a1.ID, occupants[bedIDs[0]])
	assert.Equal(t, a2.ID, occupants[bedIDs[1]])

	// Denormalized hostel name on both registrations.
	regs, err := s.GetRegistrations(ctx, []int64{a1.ID, a2.ID})
	require.NoError(t, err)
	for _, r := range regs {
		require.NotNil(t, r.HostelName)
		assert.Equal(t, "Takshila", *r.HostelName)
	}

	assert.Equal(t, []string{"ALM-001@Takshila", "ALM-001-D1@Takshila"}, sink.assigned)
}

func TestAllocateInsufficientCapacityCommitsNothing(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	allocator := NewAllocator(s, nil)
	ctx := context.Background()

	hostel, bedIDs := seedHostel(t, s, "Takshila", 1, 2)
	a1 := seedRegistration(t, gdb, reg(0, "ALM-001", "Asha Rao", nil))
	a2 := seedRegistration(t, gdb, reg(0, "ALM-002", "Vikram Shah", nil))
	a3 := seedRegistration(t, gdb, reg(0, "ALM-003", "Nisha Iyer", nil))

	_, err := allocator.Allocate(ctx, hostel.ID,
		NewSelection([]int64{a1.ID, a2.ID, a3.ID}, []int64{bedIDs[0], bedIDs[1]}))

	var ice *InsufficientCapacityError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, 1, ice.Shortfall())

	// Zero mutations: all beds still empty, no hostel names written.
	beds, err := s.GetBeds(ctx, bedIDs)
	require.NoError(t, err)
	for _, b := range beds {
		assert.Nil(t, b.RegistrationID)
	}
	regs, err := s.GetRegistrations(ctx, []int64{a1.ID, a2.ID, a3.ID})
	require.NoError(t, err)
	for _, r := range regs {
		assert.Nil(t, r.HostelName)
	}
}

func TestAllocateContinuesPastFailedPair(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	allocator := NewAllocator(s, nil)
	ctx := context.Background()

	hostel, bedIDs := seedHostel(t, s, "Takshila", 1, 3)
	squatter := seedRegistration(t, gdb, reg(0, "ALM-099", "Squatter", nil))
	require.NoError(t, s.SetBedOccupant(ctx, bedIDs[0], &squatter.ID))

	a1 := seedRegistration(t, gdb, reg(0, "ALM-001", "Asha Rao", nil))
	a2 := seedRegistration(t, gdb, reg(0, "ALM-002", "Vikram Shah", nil))

	// First pair hits the occupied bed and fails; second pair still runs.
	report, err := allocator.Allocate(ctx, hostel.ID,
		NewSelection([]int64{a1.ID, a2.ID}, []int64{bedIDs[0], bedIDs[1]}))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "already occupied")

	beds, err := s.GetBeds(ctx, []int64{bedIDs[1]})
	require.NoError(t, err)
	require.NotNil(t, beds[0].RegistrationID)
	assert.Equal(t, a2.ID, *beds[0].RegistrationID)
}

func TestAllocateRetryIsNoOp(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	sink := &captureSink{}
	allocator := NewAllocator(s, sink)
	ctx := context.Background()

	hostel, bedIDs := seedHostel(t, s, "Takshila", 1, 2)
	a1 := seedRegistration(t, gdb, reg(0, "ALM-001", "Asha Rao", nil))

	sel := NewSelection([]int64{a1.ID}, []int64{bedIDs[0]})
	report, err := allocator.Allocate(ctx, hostel.ID, sel)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)

	// Same selection again: succeeds without a second event.
	report, err = allocator.Allocate(ctx, hostel.ID, sel)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, sink.assigned, 1)
}

func TestAllocateRejectsApplicantAlreadyHoused(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	allocator := NewAllocator(s, nil)
	ctx := context.Background()

	hostel, bedIDs := seedHostel(t, s, "Takshila", 1, 2)
	a1 := seedRegistration(t, gdb, reg(0, "ALM-001", "Asha Rao", nil))
	require.NoError(t, s.SetBedOccupant(ctx, bedIDs[0], &a1.ID))

	report, err := allocator.Allocate(ctx, hostel.ID,
		NewSelection([]int64{a1.ID}, []int64{bedIDs[1]}))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Errors[0], "already holds a bed")

	beds, err := s.GetBeds(ctx, []int64{bedIDs[1]})
	require.NoError(t, err)
	assert.Nil(t, beds[0].RegistrationID)
}

func TestAllocateRejectsBedFromOtherHostel(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	allocator := NewAllocator(s, nil)
	ctx := context.Background()

	takshila, _ := seedHostel(t, s, "Takshila", 1, 1)
	_, nalandaBeds := seedHostel(t, s, "Nalanda", 1, 1)
	a1 := seedRegistration(t, gdb, reg(0, "ALM-001", "Asha Rao", nil))

	report, err := allocator.Allocate(ctx, takshila.ID,
		NewSelection([]int64{a1.ID}, []int64{nalandaBeds[0]}))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Errors[0], "does not belong to hostel")
}

func TestUnassign(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	sink := &captureSink{}
	allocator := NewAllocator(s, sink)
	ctx := context.Background()

	hostel, bedIDs := seedHostel(t, s, "Takshila", 1, 2)
	a1 := seedRegistration(t, gdb, reg(0, "ALM-001", "Asha Rao", nil))
	a2 := seedRegistration(t, gdb, reg(0, "ALM-002", "Vikram Shah", nil))

	_, err := allocator.Allocate(ctx, hostel.ID,
		NewSelection([]int64{a1.ID, a2.ID}, []int64{bedIDs[0], bedIDs[1]}))
	require.NoError(t, err)

	report, err := allocator.Unassign(ctx, []int64{bedIDs[0]})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 0, report.Failed)

	// Released bed is empty and a1's hostel_name is cleared; a2 untouched.
	beds, err := s.GetBeds(ctx, bedIDs)
	require.NoError(t, err)
	for _, b := range beds {
		if b.ID == bedIDs[0] {
			assert.Nil(t, b.RegistrationID)
		} else {
			assert.NotNil(t, b.RegistrationID)
		}
	}
	regs, err := s.GetRegistrations(ctx, []int64{a1.ID, a2.ID})
	require.NoError(t, err)
	for _, r := range regs {
		if r.ID == a1.ID {
			assert.Nil(t, r.HostelName)
		} else {
			require.NotNil(t, r.HostelName)
			assert.Equal(t, "Takshila", *r.HostelName)
		}
	}

	assert.Equal(t, []string{"ALM-001"}, sink.unassigned)
}

func TestUnassignEmptyBedIsNoOp(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	sink := &captureSink{}
	allocator := NewAllocator(s, sink)
	ctx := context.Background()

	_, bedIDs := seedHostel(t, s, "Takshila", 1, 1)

	report, err := allocator.Unassign(ctx, []int64{bedIDs[0]})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Empty(t, sink.unassigned)
}

func TestUnassignContinuesPastUnknownBed(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	allocator := NewAllocator(s, nil)
	ctx := context.Background()

	hostel, bedIDs := seedHostel(t, s, "Takshila", 1, 1)
	a1 := seedRegistration(t, gdb, reg(0, "ALM-001", "Asha Rao", nil))
	_, err := allocator.Allocate(ctx, hostel.ID, NewSelection([]int64{a1.ID}, []int64{bedIDs[0]}))
	require.NoError(t, err)

	report, err := allocator.Unassign(ctx, []int64{99999, bedIDs[0]})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
}

func TestGroupView(t *testing.T) {
	gdb := newTestDB(t)
	s := store.NewGormStore(gdb)
	allocator := NewAllocator(s, nil)
	ctx := context.Background()

	hostel, bedIDs := seedHostel(t, s, "Takshila", 1, 2)
	a1 := seedRegistration(t, gdb, reg(0, "ALM-001", "Asha Rao", nil))
	seedRegistration(t, gdb, reg(0, "ALM-001-D1", "Meera Rao", strPtr("ALM-001")))
	// Not eligible: off-campus.
	offCampus := reg(0, "ALM-005", "Off Campus", nil)
	offCampus.StayType = model.StayTypeOffCampus
	seedRegistration(t, gdb, offCampus)

	_, err := allocator.Allocate(ctx, hostel.ID, NewSelection([]int64{a1.ID}, []int64{bedIDs[0]}))
	require.NoError(t, err)

	groups, assigned, err := allocator.GroupView(ctx, "")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Size())
	_, a1Assigned := assigned[a1.ID]
	assert.True(t, a1Assigned)
	assert.Len(t, groups[0].UnassignedMembers(assigned), 1)

	// Search narrows by substring.
	groups, _, err = allocator.GroupView(ctx, "meera")
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	groups, _, err = allocator.GroupView(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, groups)
}
