package models

import (
	"sort"
	"sync"
)

// BoardKey identifies one working-schedule bucket.
type BoardKey struct {
	Department string
	Level      string
}

// Board is the in-memory working schedule: per (department, level), the
// appointments already placed, indexed by day. It is rebuilt wholesale from
// the store at startup and mutated by every successful placement, so it is a
// best-effort cache; the store stays the source of truth.
//
// The mutex only guards against the HTTP server's concurrency. Correctness
// under concurrent administrators rests on the store's transactions and the
// re-check the evaluator performs against it.
type Board struct {
	mu      sync.RWMutex
	buckets map[BoardKey]map[Weekday][]Appointment
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{buckets: make(map[BoardKey]map[Weekday][]Appointment)}
}

// Load replaces the board contents with the given appointments.
func (b *Board) Load(appointments []Appointment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buckets = make(map[BoardKey]map[Weekday][]Appointment)
	for _, appt := range appointments {
		b.insertLocked(appt)
	}
}

// Insert adds one appointment to its bucket, keeping each day ordered by
// start hour.
func (b *Board) Insert(appt Appointment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.insertLocked(appt)
}

func (b *Board) insertLocked(appt Appointment) {
	key := BoardKey{Department: appt.Department, Level: appt.Level}
	bucket, ok := b.buckets[key]
	if !ok {
		bucket = make(map[Weekday][]Appointment)
		b.buckets[key] = bucket
	}
	day := append(bucket[appt.Day], appt)
	sort.SliceStable(day, func(i, j int) bool { return day[i].StartHour < day[j].StartHour })
	bucket[appt.Day] = day
}

// RemoveByPlacement drops every fan-out replica of a placement from all
// buckets and returns the removed appointments.
func (b *Board) RemoveByPlacement(placementID string) []Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	var removed []Appointment
	for key, bucket := range b.buckets {
		for day, appts := range bucket {
			kept := appts[:0]
			for _, appt := range appts {
				if appt.PlacementID == placementID {
					removed = append(removed, appt)
					continue
				}
				kept = append(kept, appt)
			}
			if len(kept) == 0 {
				delete(bucket, day)
			} else {
				bucket[day] = kept
			}
		}
		if len(bucket) == 0 {
			delete(b.buckets, key)
		}
	}
	return removed
}

// Week returns the per-day appointment lists for one bucket, ordered by the
// week then by start hour.
func (b *Board) Week(department, level string) map[Weekday][]Appointment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[Weekday][]Appointment)
	bucket := b.buckets[BoardKey{Department: department, Level: level}]
	for day, appts := range bucket {
		cp := make([]Appointment, len(appts))
		copy(cp, appts)
		out[day] = cp
	}
	return out
}

// ByInstructor returns every appointment on the given day, across all
// buckets, taught by the instructor.
func (b *Board) ByInstructor(instructorID string, day Weekday) []Appointment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Appointment
	for _, bucket := range b.buckets {
		for _, appt := range bucket[day] {
			if appt.InstructorID == instructorID {
				out = append(out, appt)
			}
		}
	}
	return out
}

// ByRoom returns every appointment on the given day, across all buckets,
// held in the room.
func (b *Board) ByRoom(room string, day Weekday) []Appointment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Appointment
	for _, bucket := range b.buckets {
		for _, appt := range bucket[day] {
			if appt.Room == room {
				out = append(out, appt)
			}
		}
	}
	return out
}

// HasGroup reports whether the group already holds an appointment for the
// department.
func (b *Board) HasGroup(groupID, department string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for key, bucket := range b.buckets {
		if key.Department != department {
			continue
		}
		for _, appts := range bucket {
			for _, appt := range appts {
				if appt.GroupID == groupID {
					return true
				}
			}
		}
	}
	return false
}
