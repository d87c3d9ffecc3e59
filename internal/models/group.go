package models

import "time"

// GroupVariant distinguishes a lecture from a practical section.
type GroupVariant string

const (
	VariantLecture   GroupVariant = "lecture"
	VariantPractical GroupVariant = "practical"
)

// Group is a placeable teaching unit. A lecture lists every department that
// jointly offers its course; a practical is owned by exactly one department
// and carries a group number distinguishing parallel sections.
//
// Department is the owning department of a practical and empty for
// lectures. Departments is the resolved offer list: the course's share set
// for a lecture, always a single-element slice for a practical.
type Group struct {
	ID             string       `db:"id" json:"id"`
	CourseID       string       `db:"course_id" json:"course_id"`
	Subject        string       `db:"subject" json:"subject"`
	InstructorID   string       `db:"instructor_id" json:"instructor_id"`
	InstructorName string       `db:"instructor_name" json:"instructor_name"`
	Variant        GroupVariant `db:"variant" json:"variant"`
	Department     string       `db:"department" json:"department,omitempty"`
	Departments    []string     `db:"-" json:"departments"`
	Level          string       `db:"level" json:"level"`
	DurationHours  int          `db:"duration_hours" json:"duration_hours"`
	GroupNumber    int          `db:"group_number" json:"group_number,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`
}

// IsLecture reports whether the group is the theory session of its course.
func (g Group) IsLecture() bool {
	return g.Variant == VariantLecture
}

// GroupFilter captures the catalog query: groups still placeable for a
// department and level.
type GroupFilter struct {
	Department string
	Level      string
}
