package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func appointmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "placement_id", "group_id", "course_id", "subject",
		"instructor_id", "instructor_name", "variant", "group_number",
		"department", "level", "day", "start_hour", "end_hour", "room", "created_at",
	})
}

func TestAppointmentRepositoryFindByInstructor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	rows := appointmentRows().
		AddRow("a1", "p1", "g1", "c1", "Algorithms", "inst-1", "Dr. Salem", "lecture", 0,
			"CS", "2", "SUNDAY", 9, 11, "R1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM appointments WHERE instructor_id = $1 AND day = $2 ORDER BY start_hour ASC")).
		WithArgs("inst-1", models.Sunday).
		WillReturnRows(rows)

	appointments, err := repo.FindByInstructor(context.Background(), "inst-1", models.Sunday)
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, models.VariantLecture, appointments[0].Variant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBulkCreateCommitsAllReplicas(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	appointments := []models.Appointment{
		{PlacementID: "p1", GroupID: "g1", Department: "CS", Level: "2", Day: models.Sunday, StartHour: 9, EndHour: 11, Room: "R1"},
		{PlacementID: "p1", GroupID: "g1", Department: "MATH", Level: "2", Day: models.Sunday, StartHour: 9, EndHour: 11, Room: "R1"},
	}

	require.NoError(t, repo.BulkCreate(context.Background(), appointments))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryBulkCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	appointments := []models.Appointment{
		{PlacementID: "p1", GroupID: "g1", Department: "CS", Level: "2", Day: models.Sunday, StartHour: 9, EndHour: 11, Room: "R1"},
		{PlacementID: "p1", GroupID: "g1", Department: "MATH", Level: "2", Day: models.Sunday, StartHour: 9, EndHour: 11, Room: "R1"},
	}

	err := repo.BulkCreate(context.Background(), appointments)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryExistsForGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM appointments WHERE group_id = $1 AND department = $2)")).
		WithArgs("g1", "CS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForGroup(context.Background(), "g1", "CS")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryDeleteByPlacement(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM appointments WHERE placement_id = $1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.DeleteByPlacement(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
