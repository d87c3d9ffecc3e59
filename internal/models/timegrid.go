package models

import "fmt"

// Weekday is one of the seven teaching days. The week starts on Saturday to
// match the academic calendar the timetable is printed with.
type Weekday string

const (
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
)

// Weekdays returns the days in display/iteration order. Conflict checks are
// evaluated per day and never depend on this ordering.
func Weekdays() []Weekday {
	return []Weekday{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}
}

// IsTeachingDay reports whether d is a member of the week enumeration.
func IsTeachingDay(d Weekday) bool {
	for _, day := range Weekdays() {
		if day == d {
			return true
		}
	}
	return false
}

// TimeGrid is the ordered sequence of hour boundaries a session may start or
// end on. Every persisted interval's start and end are members of the grid.
type TimeGrid struct {
	hours []int
}

// DefaultGrid covers the teaching day, 08:00 through 19:00.
func DefaultGrid() TimeGrid {
	return NewTimeGrid(8, 19)
}

// NewTimeGrid builds a grid spanning [first, last] inclusive hour boundaries.
func NewTimeGrid(first, last int) TimeGrid {
	if last < first {
		first, last = last, first
	}
	hours := make([]int, 0, last-first+1)
	for h := first; h <= last; h++ {
		hours = append(hours, h)
	}
	return TimeGrid{hours: hours}
}

// Hours returns the grid boundaries in ascending order.
func (g TimeGrid) Hours() []int {
	out := make([]int, len(g.hours))
	copy(out, g.hours)
	return out
}

// SlotIndex maps a boundary to its column position, or -1 when the hour is
// not on the grid.
func (g TimeGrid) SlotIndex(hour int) int {
	for i, h := range g.hours {
		if h == hour {
			return i
		}
	}
	return -1
}

// SpanColumns returns the number of columns an interval occupies when
// rendered, assuming the interval already passed ValidateInterval.
func (g TimeGrid) SpanColumns(start, end int) int {
	return g.SlotIndex(end) - g.SlotIndex(start)
}

// ValidateInterval rejects intervals whose bounds are off the grid or whose
// start does not precede the end. Malformed bounds are never coerced.
func (g TimeGrid) ValidateInterval(start, end int) error {
	if g.SlotIndex(start) < 0 {
		return fmt.Errorf("start hour %d is not on the grid", start)
	}
	if g.SlotIndex(end) < 0 {
		return fmt.Errorf("end hour %d is not on the grid", end)
	}
	if start >= end {
		return fmt.Errorf("start hour %d must precede end hour %d", start, end)
	}
	return nil
}

// Overlaps is the single overlap predicate used throughout the engine.
// Touching boundaries (endA == startB) do not overlap.
func Overlaps(startA, endA, startB, endB int) bool {
	return !(endA <= startB || startA >= endB)
}
