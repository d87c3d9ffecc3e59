package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func groupRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "course_id", "subject", "instructor_id", "instructor_name",
		"variant", "department", "level", "duration_hours", "group_number", "created_at", "updated_at",
	})
}

func TestGroupRepositoryListAvailableDerivesPool(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	now := time.Now()
	rows := groupRows().
		AddRow("lec-cs101", "cs101", "Algorithms", "inst-1", "Dr. Salem", "lecture", "", "2", 2, 0, now, now).
		AddRow("prac-cs101-1", "cs101", "Algorithms", "inst-2", "Eng. Huda", "practical", "CS", "2", 2, 1, now, now)

	mock.ExpectQuery("NOT EXISTS").
		WithArgs("CS", "2").
		WillReturnRows(rows)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id, department FROM course_departments WHERE course_id IN")).
		WithArgs("cs101").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "department"}).
			AddRow("cs101", "CS").
			AddRow("cs101", "EE").
			AddRow("cs101", "MATH"))

	groups, err := repo.ListAvailable(context.Background(), models.GroupFilter{Department: "CS", Level: "2"})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"CS", "EE", "MATH"}, groups[0].Departments)
	assert.Equal(t, []string{"CS"}, groups[1].Departments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryFindByIDResolvesDepartments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM groups g WHERE g.id = $1")).
		WithArgs("lec-cs101").
		WillReturnRows(groupRows().
			AddRow("lec-cs101", "cs101", "Algorithms", "inst-1", "Dr. Salem", "lecture", "", "2", 2, 0, now, now))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id, department FROM course_departments WHERE course_id IN")).
		WithArgs("cs101").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "department"}).
			AddRow("cs101", "CS").
			AddRow("cs101", "MATH"))

	group, err := repo.FindByID(context.Background(), "lec-cs101")
	require.NoError(t, err)
	assert.True(t, group.IsLecture())
	assert.Equal(t, []string{"CS", "MATH"}, group.Departments)
	assert.NoError(t, mock.ExpectationsWereMet())
}
