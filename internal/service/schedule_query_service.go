package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type scheduleAppointmentRepository interface {
	ListByDepartment(ctx context.Context, department, level string) ([]models.Appointment, error)
	ListByInstructor(ctx context.Context, instructorID string) ([]models.Appointment, error)
	ListByRoom(ctx context.Context, room string) ([]models.Appointment, error)
}

type scheduleRoomRepository interface {
	List(ctx context.Context) ([]models.Room, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// WeekView is the read model of one bucket's committed week.
type WeekView struct {
	Department string                                `json:"department,omitempty"`
	Level      string                                `json:"level,omitempty"`
	Days       map[models.Weekday][]models.Appointment `json:"days"`
}

// ScheduleQueryService serves read-only timetable views, backed by the store
// with a Redis snapshot cache in front.
type ScheduleQueryService struct {
	appointments scheduleAppointmentRepository
	rooms        scheduleRoomRepository
	cache        scheduleCache
	metrics      *MetricsService
	ttl          time.Duration
	logger       *zap.Logger
}

// NewScheduleQueryService instantiates ScheduleQueryService. A nil cache
// disables snapshotting without changing behavior.
func NewScheduleQueryService(
	appointments scheduleAppointmentRepository,
	rooms scheduleRoomRepository,
	cache scheduleCache,
	metrics *MetricsService,
	ttl time.Duration,
	logger *zap.Logger,
) *ScheduleQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScheduleQueryService{
		appointments: appointments,
		rooms:        rooms,
		cache:        cache,
		metrics:      metrics,
		ttl:          ttl,
		logger:       logger,
	}
}

// Week returns the committed week of one (department, level).
func (s *ScheduleQueryService) Week(ctx context.Context, department, level string) (*WeekView, error) {
	if department == "" || level == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department and level are required")
	}

	key := fmt.Sprintf("schedule:week:%s:%s", department, level)
	if view, ok := s.cached(ctx, key); ok {
		return view, nil
	}

	appointments, err := s.appointments.ListByDepartment(ctx, department, level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department schedule")
	}

	view := &WeekView{Department: department, Level: level, Days: groupByDay(appointments)}
	s.store(ctx, key, view)
	return view, nil
}

// Instructor returns the instructor's committed week across departments.
func (s *ScheduleQueryService) Instructor(ctx context.Context, instructorID string) (*WeekView, error) {
	if instructorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "instructor id is required")
	}

	key := "schedule:instructor:" + instructorID
	if view, ok := s.cached(ctx, key); ok {
		return view, nil
	}

	appointments, err := s.appointments.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor schedule")
	}

	view := &WeekView{Days: groupByDay(appointments)}
	s.store(ctx, key, view)
	return view, nil
}

// Room returns the room's committed week.
func (s *ScheduleQueryService) Room(ctx context.Context, room string) (*WeekView, error) {
	if room == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room name is required")
	}

	key := "schedule:room:" + room
	if view, ok := s.cached(ctx, key); ok {
		return view, nil
	}

	appointments, err := s.appointments.ListByRoom(ctx, room)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room schedule")
	}

	view := &WeekView{Days: groupByDay(appointments)}
	s.store(ctx, key, view)
	return view, nil
}

// Rooms returns the room inventory.
func (s *ScheduleQueryService) Rooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Invalidate drops every cached snapshot. Called after any placement
// mutation since one fan-out touches several buckets at once.
func (s *ScheduleQueryService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "schedule:*"); err != nil {
		s.logger.Warn("failed to invalidate schedule cache", zap.Error(err))
	}
}

func (s *ScheduleQueryService) cached(ctx context.Context, key string) (*WeekView, bool) {
	if s.cache == nil {
		return nil, false
	}
	start := time.Now()
	var view WeekView
	err := s.cache.Get(ctx, key, &view)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("schedule cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return &view, true
}

func (s *ScheduleQueryService) store(ctx context.Context, key string, view *WeekView) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, view, s.ttl); err != nil {
		s.logger.Warn("schedule cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func groupByDay(appointments []models.Appointment) map[models.Weekday][]models.Appointment {
	days := make(map[models.Weekday][]models.Appointment)
	for _, appt := range appointments {
		days[appt.Day] = append(days[appt.Day], appt)
	}
	return days
}
