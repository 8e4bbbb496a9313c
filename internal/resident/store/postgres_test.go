package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carehub/internal/sentinel"
	"carehub/pkg/domain"
	"carehub/pkg/testutil"
)

// Ids past the BIGINT column range are answered without a round trip, so
// a store without a connection is enough here.
func TestPostgresStoreIDsPastBigintRange(t *testing.T) {
	s := NewPostgres(nil)
	ctx := context.Background()
	huge := domain.MustParseID("99999999999999999999")

	_, err := s.FindByID(ctx, huge)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, huge), sentinel.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, testutil.NewResidentBuilder().WithID(huge.String()).Build()), sentinel.ErrNotFound)

	page, err := s.List(ctx, ListFilter{After: huge, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestFitsBigint(t *testing.T) {
	assert.True(t, fitsBigint(domain.MustParseID("9223372036854775807")))
	assert.True(t, fitsBigint(domain.MustParseID("0007")))
	assert.False(t, fitsBigint(domain.MustParseID("9223372036854775808")))
}
