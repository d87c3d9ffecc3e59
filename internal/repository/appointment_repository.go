package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-timetable-api/internal/models"
)

const appointmentColumns = "id, placement_id, group_id, course_id, subject, instructor_id, instructor_name, variant, group_number, department, level, day, start_hour, end_hour, room, created_at"

// AppointmentRepository provides persistence for committed placements.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// ListAll returns every appointment in the store, used to rebuild the
// working board at startup.
func (r *AppointmentRepository) ListAll(ctx context.Context) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments ORDER BY day ASC, start_hour ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

// ListByDepartment returns the committed week of one (department, level).
func (r *AppointmentRepository) ListByDepartment(ctx context.Context, department, level string) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE department = $1 AND level = $2 ORDER BY day ASC, start_hour ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, department, level); err != nil {
		return nil, fmt.Errorf("list appointments by department: %w", err)
	}
	return appointments, nil
}

// FindByInstructor returns every appointment the instructor holds on the
// given day, across all departments.
func (r *AppointmentRepository) FindByInstructor(ctx context.Context, instructorID string, day models.Weekday) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE instructor_id = $1 AND day = $2 ORDER BY start_hour ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, instructorID, day); err != nil {
		return nil, fmt.Errorf("find appointments by instructor: %w", err)
	}
	return appointments, nil
}

// ListByInstructor returns the instructor's full committed week.
func (r *AppointmentRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE instructor_id = $1 ORDER BY day ASC, start_hour ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, instructorID); err != nil {
		return nil, fmt.Errorf("list appointments by instructor: %w", err)
	}
	return appointments, nil
}

// FindByRoom returns every appointment occupying the room on the given day.
func (r *AppointmentRepository) FindByRoom(ctx context.Context, room string, day models.Weekday) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE room = $1 AND day = $2 ORDER BY start_hour ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, room, day); err != nil {
		return nil, fmt.Errorf("find appointments by room: %w", err)
	}
	return appointments, nil
}

// ListByRoom returns the room's full committed week.
func (r *AppointmentRepository) ListByRoom(ctx context.Context, room string) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE room = $1 ORDER BY day ASC, start_hour ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, room); err != nil {
		return nil, fmt.Errorf("list appointments by room: %w", err)
	}
	return appointments, nil
}

// FindByPlacement returns the fan-out replicas sharing one placement id.
func (r *AppointmentRepository) FindByPlacement(ctx context.Context, placementID string) ([]models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE placement_id = $1 ORDER BY department ASC", appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, placementID); err != nil {
		return nil, fmt.Errorf("find appointments by placement: %w", err)
	}
	return appointments, nil
}

// FindByID loads one appointment by id.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appt models.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id); err != nil {
		return nil, err
	}
	return &appt, nil
}

// ExistsForGroup reports whether the group already sits on the given
// department's board.
func (r *AppointmentRepository) ExistsForGroup(ctx context.Context, groupID, department string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM appointments WHERE group_id = $1 AND department = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, groupID, department); err != nil {
		return false, fmt.Errorf("check group placement: %w", err)
	}
	return exists, nil
}

// BulkCreate inserts all replicas of one placement within a single
// transaction. Either every department receives its row or none does.
func (r *AppointmentRepository) BulkCreate(ctx context.Context, appointments []models.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create appointments: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.bulkInsertAppointments(ctx, tx, appointments); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create appointments: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) bulkInsertAppointments(ctx context.Context, exec sqlx.ExtContext, appointments []models.Appointment) error {
	const query = `INSERT INTO appointments (id, placement_id, group_id, course_id, subject, instructor_id, instructor_name, variant, group_number, department, level, day, start_hour, end_hour, room, created_at) VALUES (:id, :placement_id, :group_id, :course_id, :subject, :instructor_id, :instructor_name, :variant, :group_number, :department, :level, :day, :start_hour, :end_hour, :room, :created_at)`
	now := time.Now().UTC()
	for i := range appointments {
		payload := appointments[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, exec, query, payload); err != nil {
			return fmt.Errorf("insert appointment for %s: %w", payload.Department, err)
		}
	}
	return nil
}

// DeleteByPlacement removes every replica of a placement and returns how
// many rows went away.
func (r *AppointmentRepository) DeleteByPlacement(ctx context.Context, placementID string) (int64, error) {
	const query = `DELETE FROM appointments WHERE placement_id = $1`
	res, err := r.db.ExecContext(ctx, query, placementID)
	if err != nil {
		return 0, fmt.Errorf("delete appointments by placement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete appointments rows affected: %w", err)
	}
	return affected, nil
}
