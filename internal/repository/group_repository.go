package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const groupColumns = "g.id, g.course_id, g.subject, g.instructor_id, g.instructor_name, g.variant, g.department, g.level, g.duration_hours, g.group_number, g.created_at, g.updated_at"

// GroupRepository provides read access to the group catalog.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// ListAvailable returns the groups a department can still place at a level.
// Availability is derived, not stored: a group is available as long as no
// appointment exists for it under that department, so a shared lecture
// leaves every owning department's pool the moment its fan-out commits.
// Lectures are offered to every department sharing the course; a practical
// only appears in its owning department's pool.
func (r *GroupRepository) ListAvailable(ctx context.Context, filter models.GroupFilter) ([]models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM groups g
		JOIN course_departments cd ON cd.course_id = g.course_id
		WHERE cd.department = $1 AND g.level = $2
		AND (g.variant = 'lecture' OR g.department = $1)
		AND NOT EXISTS (
			SELECT 1 FROM appointments a
			WHERE a.group_id = g.id AND a.department = $1
		)
		ORDER BY g.subject ASC, g.variant ASC, g.group_number ASC`, groupColumns)

	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, filter.Department, filter.Level); err != nil {
		return nil, fmt.Errorf("list available groups: %w", err)
	}

	if err := r.attachDepartments(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// FindByID loads one group with its owning departments resolved.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	query := fmt.Sprintf("SELECT %s FROM groups g WHERE g.id = $1", groupColumns)
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}

	groups := []models.Group{group}
	if err := r.attachDepartments(ctx, groups); err != nil {
		return nil, err
	}
	return &groups[0], nil
}

type courseDepartment struct {
	CourseID   string `db:"course_id"`
	Department string `db:"department"`
}

// attachDepartments resolves each group's offer list. A practical belongs
// to its owning department alone; only lectures inherit the course's share
// set from course_departments.
func (r *GroupRepository) attachDepartments(ctx context.Context, groups []models.Group) error {
	if len(groups) == 0 {
		return nil
	}

	courseIDs := make([]string, 0, len(groups))
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if !g.IsLecture() {
			continue
		}
		if !seen[g.CourseID] {
			seen[g.CourseID] = true
			courseIDs = append(courseIDs, g.CourseID)
		}
	}

	if len(courseIDs) == 0 {
		for i := range groups {
			groups[i].Departments = []string{groups[i].Department}
		}
		return nil
	}

	query, args, err := sqlx.In("SELECT course_id, department FROM course_departments WHERE course_id IN (?) ORDER BY department ASC", courseIDs)
	if err != nil {
		return fmt.Errorf("build course departments query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []courseDepartment
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("load course departments: %w", err)
	}

	byCourse := make(map[string][]string, len(courseIDs))
	for _, row := range rows {
		byCourse[row.CourseID] = append(byCourse[row.CourseID], row.Department)
	}

	for i := range groups {
		if groups[i].IsLecture() {
			groups[i].Departments = byCourse[groups[i].CourseID]
		} else {
			groups[i].Departments = []string{groups[i].Department}
		}
	}
	return nil
}
