package accounting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "carehub/pkg/domain-errors"
)

func TestTotal(t *testing.T) {
	t.Run("sums quantity times unit price", func(t *testing.T) {
		total, err := Total([]LineItem{
			{Quantity: 1, UnitPriceCents: 350000},
			{Quantity: 4, UnitPriceCents: 4500},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(368000), total)
	})

	t.Run("line product overflow", func(t *testing.T) {
		_, err := Total([]LineItem{
			{Quantity: 1, UnitPriceCents: 1},
			{Quantity: 10_000_000_000, UnitPriceCents: 10_000_000_000},
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "line_items.1", dErrors.IssuesOf(err)[0].Path)
	})

	t.Run("running sum overflow", func(t *testing.T) {
		_, err := Total([]LineItem{
			{Quantity: 1, UnitPriceCents: math.MaxInt64},
			{Quantity: 1, UnitPriceCents: 1},
		})
		require.Error(t, err)
		assert.Equal(t, "line_items.1", dErrors.IssuesOf(err)[0].Path)
	})

	t.Run("empty invoice totals zero", func(t *testing.T) {
		total, err := Total(nil)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}
