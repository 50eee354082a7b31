package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjacentDates(t *testing.T) {
	dates := []string{"2024-12-10", "2024-12-14", "2024-12-15"}

	t.Run("middle date has both neighbours", func(t *testing.T) {
		prev, next := AdjacentDates(dates, "2024-12-14")
		require.NotNil(t, prev)
		require.NotNil(t, next)
		assert.Equal(t, "2024-12-10", *prev)
		assert.Equal(t, "2024-12-15", *next)
	})

	t.Run("first date has no previous", func(t *testing.T) {
		prev, next := AdjacentDates(dates, "2024-12-10")
		assert.Nil(t, prev)
		require.NotNil(t, next)
		assert.Equal(t, "2024-12-14", *next)
	})

	t.Run("last date has no next", func(t *testing.T) {
		prev, next := AdjacentDates(dates, "2024-12-15")
		require.NotNil(t, prev)
		assert.Equal(t, "2024-12-14", *prev)
		assert.Nil(t, next)
	})

	t.Run("unrecorded reference slots in without persisting", func(t *testing.T) {
		prev, next := AdjacentDates(dates, "2024-12-12")
		require.NotNil(t, prev)
		require.NotNil(t, next)
		assert.Equal(t, "2024-12-10", *prev)
		assert.Equal(t, "2024-12-14", *next)
	})

	t.Run("empty history gives no neighbours", func(t *testing.T) {
		prev, next := AdjacentDates(nil, "2024-12-12")
		assert.Nil(t, prev)
		assert.Nil(t, next)
	})

	t.Run("repeated calls agree", func(t *testing.T) {
		p1, n1 := AdjacentDates(dates, "2024-12-14")
		p2, n2 := AdjacentDates(dates, "2024-12-14")
		assert.Equal(t, *p1, *p2)
		assert.Equal(t, *n1, *n2)
	})
}
