package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		startA, endA, startB, endB     int
		want                           bool
	}{
		{"identical", 9, 11, 9, 11, true},
		{"contained", 9, 12, 10, 11, true},
		{"partial overlap", 8, 10, 9, 11, true},
		{"touching end to start", 8, 9, 9, 10, false},
		{"touching start to end", 9, 10, 8, 9, false},
		{"disjoint", 8, 9, 11, 12, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.startA, tc.endA, tc.startB, tc.endB))
			assert.Equal(t, tc.want, Overlaps(tc.startB, tc.endB, tc.startA, tc.endA))
		})
	}
}

func TestDefaultGridBounds(t *testing.T) {
	grid := DefaultGrid()
	hours := grid.Hours()
	require.Len(t, hours, 12)
	assert.Equal(t, 8, hours[0])
	assert.Equal(t, 19, hours[len(hours)-1])
}

func TestValidateInterval(t *testing.T) {
	grid := DefaultGrid()

	assert.NoError(t, grid.ValidateInterval(8, 9))
	assert.NoError(t, grid.ValidateInterval(17, 19))

	assert.Error(t, grid.ValidateInterval(9, 9))
	assert.Error(t, grid.ValidateInterval(11, 9))
	assert.Error(t, grid.ValidateInterval(7, 9))
	assert.Error(t, grid.ValidateInterval(18, 20))
}

func TestSlotIndexAndSpan(t *testing.T) {
	grid := DefaultGrid()

	assert.Equal(t, 0, grid.SlotIndex(8))
	assert.Equal(t, 11, grid.SlotIndex(19))
	assert.Equal(t, -1, grid.SlotIndex(20))

	assert.Equal(t, 2, grid.SpanColumns(9, 11))
}

func TestWeekStartsOnSaturday(t *testing.T) {
	days := Weekdays()
	require.Len(t, days, 7)
	assert.Equal(t, Saturday, days[0])
	assert.Equal(t, Friday, days[6])

	assert.True(t, IsTeachingDay(Sunday))
	assert.False(t, IsTeachingDay(Weekday("FUNDAY")))
}
