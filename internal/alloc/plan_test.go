package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-allocation-backend/internal/store"
)

func TestNewSelection(t *testing.T) {
	sel := NewSelection([]int64{3, 1, 3, 2, 1}, []int64{10, 10, 11})
	assert.Equal(t, []int64{3, 1, 2}, sel.Applicants)
	assert.Equal(t, []int64{10, 11}, sel.Beds)
}

func TestPlan(t *testing.T) {
	t.Run("pairs positionally in selection order", func(t *testing.T) {
		pairs, err := Plan(NewSelection([]int64{7, 5}, []int64{21, 20}))
		require.NoError(t, err)
		assert.Equal(t, []Pair{
			{RegistrationID: 7, BedID: 21},
			{RegistrationID: 5, BedID: 20},
		}, pairs)
	})

	t.Run("extra beds are left over, not an error", func(t *testing.T) {
		pairs, err := Plan(NewSelection([]int64{7}, []int64{20, 21, 22}))
		require.NoError(t, err)
		assert.Len(t, pairs, 1)
		assert.Equal(t, Pair{RegistrationID: 7, BedID: 20}, pairs[0])
	})

	t.Run("no applicants", func(t *testing.T) {
		_, err := Plan(NewSelection(nil, []int64{20}))
		var ve *store.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "applicants", ve.Field)
	})

	t.Run("no beds", func(t *testing.T) {
		_, err := Plan(NewSelection([]int64{7}, nil))
		var ve *store.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "beds", ve.Field)
	})

	t.Run("more applicants than beds", func(t *testing.T) {
		_, err := Plan(NewSelection([]int64{1, 2, 3}, []int64{20, 21}))

		var ice *InsufficientCapacityError
		require.True(t, errors.As(err, &ice))
		assert.Equal(t, 3, ice.Applicants)
		assert.Equal(t, 2, ice.Beds)
		assert.Equal(t, 1, ice.Shortfall())
	})
}
