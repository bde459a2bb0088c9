package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDayKey(t *testing.T) {
	// Local times collapse onto their UTC calendar day.
	est := time.FixedZone("EST", -5*3600)
	late := time.Date(2025, 6, 14, 22, 30, 0, 0, est) // 2025-06-15 03:30 UTC
	require.Equal(t, "2025-06-15", DayKey(late))
	require.Equal(t, "2025-06-14", DayKey(time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)))
}

func TestNormalizeDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	require.Equal(t, now, NormalizeDate(now))
	require.Equal(t, now, NormalizeDate(&now))
	require.True(t, NormalizeDate((*time.Time)(nil)).IsZero())

	parsed := NormalizeDate("2025-06-15T10:30:00Z")
	require.True(t, parsed.Equal(now))
	require.Equal(t, "2025-06-15", DayKey(NormalizeDate("2025-06-15")))

	require.True(t, NormalizeDate("not a date").IsZero())
	require.True(t, NormalizeDate(42).IsZero())
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	require.EqualValues(t, 40, offset)
	require.Equal(t, 20, limit)

	// Out-of-range values fall back to the defaults.
	offset, limit = CalculateOffsetLimit(0, 0)
	require.EqualValues(t, 0, offset)
	require.Equal(t, DefaultPageSize, limit)

	_, limit = CalculateOffsetLimit(1, MaxPageSize+1)
	require.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	require.Equal(t, 2, info.CurrentPage)
	require.Equal(t, 3, info.TotalPages)
	require.Equal(t, 10, info.PageSize)
	require.EqualValues(t, 25, info.TotalItems)

	// An empty first page still reports one page.
	info = NewPaginationInfo(0, 1, 10)
	require.Equal(t, 1, info.TotalPages)
}
