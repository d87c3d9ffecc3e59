package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type mockScheduleRepo struct {
	appointments []models.Appointment
	calls        int
}

func (m *mockScheduleRepo) ListByDepartment(ctx context.Context, department, level string) ([]models.Appointment, error) {
	m.calls++
	var out []models.Appointment
	for _, appt := range m.appointments {
		if appt.Department == department && appt.Level == level {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) ListByInstructor(ctx context.Context, instructorID string) ([]models.Appointment, error) {
	m.calls++
	var out []models.Appointment
	for _, appt := range m.appointments {
		if appt.InstructorID == instructorID {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) ListByRoom(ctx context.Context, room string) ([]models.Appointment, error) {
	m.calls++
	var out []models.Appointment
	for _, appt := range m.appointments {
		if appt.Room == room {
			out = append(out, appt)
		}
	}
	return out, nil
}

type mockRoomLister struct{}

func (m *mockRoomLister) List(ctx context.Context) ([]models.Room, error) {
	return []models.Room{{ID: "r1", Name: "R1", Capacity: 40}}, nil
}

type memoryCache struct {
	values map[string][]byte
	sets   int
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	m.sets++
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = nil
	return nil
}

func weekAppointments() []models.Appointment {
	return []models.Appointment{
		{
			ID: "a1", PlacementID: "p1", GroupID: "g1",
			InstructorID: "inst-1", Department: "CS", Level: "2",
			Day: models.Sunday, StartHour: 9, EndHour: 11, Room: "R1",
		},
		{
			ID: "a2", PlacementID: "p2", GroupID: "g2",
			InstructorID: "inst-2", Department: "CS", Level: "2",
			Day: models.Monday, StartHour: 12, EndHour: 14, Room: "R2",
		},
	}
}

func TestWeekGroupsAppointmentsByDay(t *testing.T) {
	repo := &mockScheduleRepo{appointments: weekAppointments()}
	svc := NewScheduleQueryService(repo, &mockRoomLister{}, nil, nil, 0, nil)

	view, err := svc.Week(context.Background(), "CS", "2")
	require.NoError(t, err)
	assert.Equal(t, "CS", view.Department)
	assert.Len(t, view.Days[models.Sunday], 1)
	assert.Len(t, view.Days[models.Monday], 1)
	assert.Empty(t, view.Days[models.Friday])
}

func TestWeekServesSecondReadFromCache(t *testing.T) {
	repo := &mockScheduleRepo{appointments: weekAppointments()}
	cache := &memoryCache{}
	svc := NewScheduleQueryService(repo, &mockRoomLister{}, cache, nil, time.Minute, nil)

	_, err := svc.Week(context.Background(), "CS", "2")
	require.NoError(t, err)
	view, err := svc.Week(context.Background(), "CS", "2")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, cache.sets)
	assert.Len(t, view.Days[models.Sunday], 1)
}

func TestInvalidateDropsSnapshots(t *testing.T) {
	repo := &mockScheduleRepo{appointments: weekAppointments()}
	cache := &memoryCache{}
	svc := NewScheduleQueryService(repo, &mockRoomLister{}, cache, nil, time.Minute, nil)

	_, err := svc.Week(context.Background(), "CS", "2")
	require.NoError(t, err)

	svc.Invalidate(context.Background())

	_, err = svc.Week(context.Background(), "CS", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestInstructorViewSpansDepartments(t *testing.T) {
	appointments := weekAppointments()
	appointments = append(appointments, models.Appointment{
		ID: "a3", PlacementID: "p1", GroupID: "g1",
		InstructorID: "inst-1", Department: "MATH", Level: "2",
		Day: models.Sunday, StartHour: 9, EndHour: 11, Room: "R1",
	})
	repo := &mockScheduleRepo{appointments: appointments}
	svc := NewScheduleQueryService(repo, &mockRoomLister{}, nil, nil, 0, nil)

	view, err := svc.Instructor(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.Len(t, view.Days[models.Sunday], 2)
}

func TestWeekRequiresFilter(t *testing.T) {
	svc := NewScheduleQueryService(&mockScheduleRepo{}, &mockRoomLister{}, nil, nil, 0, nil)

	_, err := svc.Week(context.Background(), "", "2")
	assertErrCode(t, err, appErrors.ErrValidation.Code)
}
