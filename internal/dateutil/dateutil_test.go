package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

func TestKeyOf_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 01:30 on Mar 2 in UTC+9 is still Mar 1 in UTC.
	local := time.Date(2025, 3, 2, 1, 30, 0, 0, loc)

	assert.Equal(t, "2025-03-01", KeyOf(local))
}

func TestTodayAndYesterdayKey(t *testing.T) {
	clock := fixedClock{now: time.Date(2025, 1, 1, 0, 5, 0, 0, time.UTC)}

	assert.Equal(t, "2025-01-01", TodayKey(clock))
	assert.Equal(t, "2024-12-31", YesterdayKey(clock))
}

func TestParseKey(t *testing.T) {
	got, err := ParseKey("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseKey("2025-2-28")
	assert.ErrorIs(t, err, ErrInvalidDateKey)

	_, err = ParseKey("not-a-date")
	assert.ErrorIs(t, err, ErrInvalidDateKey)
}

func TestSameCalendarDay(t *testing.T) {
	same, err := SameCalendarDay("2025-06-10", "2025-06-10")
	require.NoError(t, err)
	assert.True(t, same)

	same, err = SameCalendarDay("2025-06-10", "2025-06-11")
	require.NoError(t, err)
	assert.False(t, same)

	_, err = SameCalendarDay("garbage", "2025-06-10")
	assert.ErrorIs(t, err, ErrInvalidDateKey)
}

func TestKeysBetween(t *testing.T) {
	tests := []struct {
		name  string
		after string
		until string
		want  []string
	}{
		{
			name:  "simple range",
			after: "2025-06-10",
			until: "2025-06-13",
			want:  []string{"2025-06-11", "2025-06-12", "2025-06-13"},
		},
		{
			name:  "empty range",
			after: "2025-06-10",
			until: "2025-06-10",
			want:  nil,
		},
		{
			name:  "inverted range",
			after: "2025-06-13",
			until: "2025-06-10",
			want:  nil,
		},
		{
			name:  "month boundary",
			after: "2025-01-30",
			until: "2025-02-02",
			want:  []string{"2025-01-31", "2025-02-01", "2025-02-02"},
		},
		{
			name:  "year boundary",
			after: "2024-12-30",
			until: "2025-01-01",
			want:  []string{"2024-12-31", "2025-01-01"},
		},
		{
			name:  "leap day",
			after: "2024-02-27",
			until: "2024-03-01",
			want:  []string{"2024-02-28", "2024-02-29", "2024-03-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KeysBetween(tt.after, tt.until)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeysBetween_InvalidKey(t *testing.T) {
	_, err := KeysBetween("bad", "2025-06-10")
	assert.ErrorIs(t, err, ErrInvalidDateKey)

	_, err = KeysBetween("2025-06-10", "bad")
	assert.ErrorIs(t, err, ErrInvalidDateKey)
}
