package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carehub/contracts/resident"
	"carehub/internal/sentinel"
	"carehub/pkg/domain"
	"carehub/pkg/testutil"
)

func TestInMemoryStoreOperations(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	first := testutil.NewResidentBuilder().WithRoom("12B").Build()
	require.NoError(t, s.Create(ctx, first))
	assert.Equal(t, FirstID, first.ID.String())

	second := testutil.NewResidentBuilder().WithName("Grace", "Hopper").Build()
	require.NoError(t, s.Create(ctx, second))
	assert.Equal(t, "9007199254740994", second.ID.String())

	fetched, err := s.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", fetched.FirstName)
	require.NotNil(t, fetched.RoomNumber)
	assert.Equal(t, "12B", *fetched.RoomNumber)

	// Copies returned by the store do not alias stored state.
	fetched.EmergencyContacts[0].Name = "changed"
	again, err := s.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Byron King", again.EmergencyContacts[0].Name)

	fetched.FirstName = "Augusta"
	require.NoError(t, s.Update(ctx, fetched))
	again, err = s.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", again.FirstName)

	require.NoError(t, s.Delete(ctx, first.ID))
	_, err = s.FindByID(ctx, first.ID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryMissingResident(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	missing := testutil.NewResidentBuilder().WithID("42").Build()

	_, err := s.FindByID(ctx, missing.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, missing), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, missing.ID), ErrNotFound)
}

func TestInMemoryListCursor(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		r := testutil.NewResidentBuilder().WithName(fmt.Sprintf("R%d", i), "Test").Build()
		if i%2 == 1 {
			r.Status = resident.StatusOnLeave
		}
		require.NoError(t, s.Create(ctx, r))
	}

	page, err := s.List(ctx, ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "9007199254740993", page.Items[0].ID.String())
	assert.Equal(t, "9007199254740994", page.Items[1].ID.String())

	page, err = s.List(ctx, ListFilter{After: page.Items[1].ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "9007199254740995", page.Items[0].ID.String())

	page, err = s.List(ctx, ListFilter{After: page.Items[1].ID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	assert.Equal(t, "9007199254740997", page.Items[0].ID.String())

	onLeave, err := s.List(ctx, ListFilter{Limit: 10, Status: resident.StatusOnLeave})
	require.NoError(t, err)
	require.Len(t, onLeave.Items, 2)
	assert.False(t, onLeave.HasMore)
	for _, r := range onLeave.Items {
		assert.Equal(t, resident.StatusOnLeave, r.Status)
	}
}

func TestInMemoryListOrdersAcrossDigitBoundary(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()
	s.next.SetString("9999999999999999998", 10)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Create(ctx, testutil.NewResidentBuilder().Build()))
	}

	page, err := s.List(ctx, ListFilter{Limit: 10})
	require.NoError(t, err)
	ids := make([]string, len(page.Items))
	for i, r := range page.Items {
		ids[i] = r.ID.String()
	}
	assert.Equal(t, []string{"9999999999999999998", "9999999999999999999", "10000000000000000000"}, ids)

	after, err := s.List(ctx, ListFilter{After: domain.MustParseID("9999999999999999999"), Limit: 10})
	require.NoError(t, err)
	require.Len(t, after.Items, 1)
	assert.Equal(t, "10000000000000000000", after.Items[0].ID.String())
}

func TestInMemoryRoomOccupancy(t *testing.T) {
	ctx := context.Background()

	t.Run("occupied room is rejected", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Create(ctx, testutil.NewResidentBuilder().WithRoom("3A").Build()))
		err := s.Create(ctx, testutil.NewResidentBuilder().WithRoom("3A").Build())
		assert.ErrorIs(t, err, ErrRoomTaken)
	})

	t.Run("discharged resident frees the room", func(t *testing.T) {
		s := NewInMemory()
		first := testutil.NewResidentBuilder().WithRoom("3A").Build()
		require.NoError(t, s.Create(ctx, first))
		first.Status = resident.StatusDischarged
		require.NoError(t, s.Update(ctx, first))
		assert.NoError(t, s.Create(ctx, testutil.NewResidentBuilder().WithRoom("3A").Build()))
	})

	t.Run("update keeping own room is allowed", func(t *testing.T) {
		s := NewInMemory()
		r := testutil.NewResidentBuilder().WithRoom("3A").Build()
		require.NoError(t, s.Create(ctx, r))
		r.LastName = "Byron"
		assert.NoError(t, s.Update(ctx, r))
	})

	t.Run("update into an occupied room is rejected", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Create(ctx, testutil.NewResidentBuilder().WithRoom("3A").Build()))
		other := testutil.NewResidentBuilder().WithRoom("3B").Build()
		require.NoError(t, s.Create(ctx, other))
		other.RoomNumber = ptr("3A")
		assert.ErrorIs(t, s.Update(ctx, other), ErrRoomTaken)
	})
}

func TestInMemoryConcurrentAdmissionsToOneRoom(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	const goroutines = 20
	result := testutil.RunConcurrent(goroutines, func(int) error {
		return s.Create(ctx, testutil.NewResidentBuilder().WithRoom("7C").Build())
	})

	assert.Equal(t, int32(1), result.Successes)
	assert.Equal(t, int32(goroutines-1), result.Conflicts)
	assert.Equal(t, int32(0), result.Errors)
}

func ptr(s string) *string { return &s }
