package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CourseRepository resolves course ownership across departments.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// SharedDepartments returns every department that jointly offers the course.
// A lecture placement fans out to exactly this set.
func (r *CourseRepository) SharedDepartments(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT department FROM course_departments WHERE course_id = $1 ORDER BY department ASC`
	var departments []string
	if err := r.db.SelectContext(ctx, &departments, query, courseID); err != nil {
		return nil, fmt.Errorf("load shared departments: %w", err)
	}
	return departments, nil
}

// ListDepartments returns every department known to the catalog.
func (r *CourseRepository) ListDepartments(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT department FROM course_departments ORDER BY department ASC`
	var departments []string
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}
