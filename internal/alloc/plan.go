package alloc

import (
	"fmt"

	"hostel-allocation-backend/internal/store"
)

// Selection is the operator's accumulated pick: applicant registration ids
// and empty bed ids, each in the order they were clicked. The order matters:
// allocation pairs the Nth applicant with the Nth bed.
type Selection struct {
	Applicants []int64
	Beds       []int64
}

// NewSelection builds a Selection, dropping duplicate ids while preserving
// first-seen order on both sides.
func NewSelection(applicants, beds []int64) Selection {
	return Selection{
		Applicants: dedupe(applicants),
		Beds:       dedupe(beds),
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Pair binds one applicant to one bed.
type Pair struct {
	RegistrationID int64 `json:"registration_id"`
	BedID          int64 `json:"bed_id"`
}

// InsufficientCapacityError rejects an allocation where more applicants than
// beds were selected. Nothing is committed.
type InsufficientCapacityError struct {
	Applicants int
	Beds       int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("selected %d applicants but only %d beds; %d more bed(s) needed",
		e.Applicants, e.Beds, e.Shortfall())
}

// Shortfall returns how many beds are missing.
func (e *InsufficientCapacityError) Shortfall() int {
	return e.Applicants - e.Beds
}

// Plan validates a selection and returns the ordered applicant/bed pairs
// without touching storage. Pairing is positional: the Nth selected applicant
// goes to the Nth selected bed. No room- or group-adjacency is promised.
func Plan(sel Selection) ([]Pair, error) {
	if len(sel.Applicants) == 0 {
		return nil, &store.ValidationError{Field: "applicants", Reason: "select at least one applicant"}
	}
	if len(sel.Beds) == 0 {
		return nil, &store.ValidationError{Field: "beds", Reason: "select at least one bed"}
	}
	if len(sel.Applicants) > len(sel.Beds) {
		return nil, &InsufficientCapacityError{Applicants: len(sel.Applicants), Beds: len(sel.Beds)}
	}

	pairs := make([]Pair, len(sel.Applicants))
	for i, regID := range sel.Applicants {
		pairs[i] = Pair{RegistrationID: regID, BedID: sel.Beds[i]}
	}
	return pairs, nil
}
