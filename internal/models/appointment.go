package models

import "time"

// Appointment is one committed (group, day, interval, room, department)
// fact. A shared lecture produces one appointment per owning department; the
// replicas share PlacementID and carry identical day, hours and room,
// differing only by Department.
type Appointment struct {
	ID             string       `db:"id" json:"id"`
	PlacementID    string       `db:"placement_id" json:"placement_id"`
	GroupID        string       `db:"group_id" json:"group_id"`
	CourseID       string       `db:"course_id" json:"course_id"`
	Subject        string       `db:"subject" json:"subject"`
	InstructorID   string       `db:"instructor_id" json:"instructor_id"`
	InstructorName string       `db:"instructor_name" json:"instructor_name"`
	Variant        GroupVariant `db:"variant" json:"variant"`
	GroupNumber    int          `db:"group_number" json:"group_number,omitempty"`
	Department     string       `db:"department" json:"department"`
	Level          string       `db:"level" json:"level"`
	Day            Weekday      `db:"day" json:"day"`
	StartHour      int          `db:"start_hour" json:"start_hour"`
	EndHour        int          `db:"end_hour" json:"end_hour"`
	Room           string       `db:"room" json:"room"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

// SameLecture reports whether the appointment is a fan-out replica of the
// given lecture group: same course, same level, both lectures. Identity is
// deliberately not based on subject or instructor display strings.
func (a Appointment) SameLecture(g Group) bool {
	return g.IsLecture() && a.Variant == VariantLecture &&
		a.CourseID == g.CourseID && a.Level == g.Level
}

// PlacementConflict describes the existing appointment an infeasible
// proposal collides with.
type PlacementConflict struct {
	AppointmentID  string  `json:"appointment_id"`
	Subject        string  `json:"subject"`
	InstructorName string  `json:"instructor_name"`
	Department     string  `json:"department"`
	Day            Weekday `json:"day"`
	StartHour      int     `json:"start_hour"`
	EndHour        int     `json:"end_hour"`
	Room           string  `json:"room"`
	Dimension      string  `json:"dimension"`
}

// PlacementConflictError is returned when a proposal collides with an
// existing instructor commitment or room reservation.
type PlacementConflictError struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Conflict PlacementConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *PlacementConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Room is a bookable teaching location.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
}
