package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

type placementAppointmentRepository interface {
	ListAll(ctx context.Context) ([]models.Appointment, error)
	FindByInstructor(ctx context.Context, instructorID string, day models.Weekday) ([]models.Appointment, error)
	FindByRoom(ctx context.Context, room string, day models.Weekday) ([]models.Appointment, error)
	FindByPlacement(ctx context.Context, placementID string) ([]models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	ExistsForGroup(ctx context.Context, groupID, department string) (bool, error)
	BulkCreate(ctx context.Context, appointments []models.Appointment) error
	DeleteByPlacement(ctx context.Context, placementID string) (int64, error)
}

type placementGroupRepository interface {
	ListAvailable(ctx context.Context, filter models.GroupFilter) ([]models.Group, error)
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

type placementCourseRepository interface {
	SharedDepartments(ctx context.Context, courseID string) ([]string, error)
	ListDepartments(ctx context.Context) ([]string, error)
}

type placementRoomRepository interface {
	FindByName(ctx context.Context, name string) (*models.Room, error)
}

// PlaceRequest is a proposal to commit a group onto the timetable.
type PlaceRequest struct {
	GroupID    string         `json:"group_id" validate:"required"`
	Department string         `json:"department" validate:"required"`
	Day        models.Weekday `json:"day" validate:"required"`
	StartHour  int            `json:"start_hour" validate:"required"`
	EndHour    int            `json:"end_hour" validate:"required"`
	Room       string         `json:"room" validate:"required"`
}

// PlaceResult reports a committed placement and its fan-out replicas.
type PlaceResult struct {
	PlacementID  string               `json:"placement_id"`
	Appointments []models.Appointment `json:"appointments"`
}

// CheckResult reports the feasibility verdict for a proposal without
// committing anything.
type CheckResult struct {
	Feasible bool                      `json:"feasible"`
	Conflict *models.PlacementConflict `json:"conflict,omitempty"`
}

// PlacementService is the placement engine: it derives the catalog of
// still-placeable groups, evaluates proposals against the working board and
// the store, and commits accepted placements atomically with lecture
// fan-out across the owning departments.
type PlacementService struct {
	appointments placementAppointmentRepository
	groups       placementGroupRepository
	courses      placementCourseRepository
	rooms        placementRoomRepository
	board        *models.Board
	grid         models.TimeGrid
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewPlacementService instantiates PlacementService.
func NewPlacementService(
	appointments placementAppointmentRepository,
	groups placementGroupRepository,
	courses placementCourseRepository,
	rooms placementRoomRepository,
	board *models.Board,
	grid models.TimeGrid,
	validate *validator.Validate,
	logger *zap.Logger,
) *PlacementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if board == nil {
		board = models.NewBoard()
	}
	return &PlacementService{
		appointments: appointments,
		groups:       groups,
		courses:      courses,
		rooms:        rooms,
		board:        board,
		grid:         grid,
		validator:    validate,
		logger:       logger,
	}
}

// LoadBoard rebuilds the in-memory working board from the store. Called once
// at startup; the board afterwards tracks every commit made through this
// service.
func (s *PlacementService) LoadBoard(ctx context.Context) error {
	appointments, err := s.appointments.ListAll(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working board")
	}
	s.board.Load(appointments)
	s.logger.Info("working board loaded", zap.Int("appointments", len(appointments)))
	return nil
}

// AvailableGroups returns the groups a department can still place at a
// level. The pool is derived from the appointments table, never stored.
func (s *PlacementService) AvailableGroups(ctx context.Context, filter models.GroupFilter) ([]models.Group, error) {
	if filter.Department == "" || filter.Level == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department and level are required")
	}
	groups, err := s.groups.ListAvailable(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available groups")
	}
	return groups, nil
}

// DepartmentsFor resolves the fan-out target set of a group: every owning
// department for a lecture, the group's own department for a practical.
func (s *PlacementService) DepartmentsFor(ctx context.Context, groupID string) ([]string, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.IsLecture() {
		return s.sharedDepartments(ctx, group)
	}
	return group.Departments, nil
}

// Departments lists every department known to the catalog.
func (s *PlacementService) Departments(ctx context.Context) ([]string, error) {
	departments, err := s.courses.ListDepartments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Placement returns the fan-out replicas of one committed placement.
func (s *PlacementService) Placement(ctx context.Context, placementID string) ([]models.Appointment, error) {
	if placementID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "placement id is required")
	}
	appointments, err := s.appointments.FindByPlacement(ctx, placementID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placement")
	}
	if len(appointments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
	}
	return appointments, nil
}

// CheckConflict evaluates a proposal without committing it. A group already
// placed for the requested department is rejected before any conflict scan,
// the same way Place turns it away.
func (s *PlacementService) CheckConflict(ctx context.Context, req PlaceRequest) (*CheckResult, error) {
	group, err := s.admitProposal(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.assertAvailable(ctx, group, []string{req.Department}); err != nil {
		return nil, err
	}

	conflict, err := s.findConflict(ctx, group, req)
	if err != nil {
		return nil, err
	}
	return &CheckResult{Feasible: conflict == nil, Conflict: conflict}, nil
}

// Place commits a proposal. A lecture is written once per owning department
// in a single transaction; all replicas share one placement id, so they
// appear and disappear together.
func (s *PlacementService) Place(ctx context.Context, req PlaceRequest) (*PlaceResult, error) {
	group, err := s.admitProposal(ctx, req)
	if err != nil {
		return nil, err
	}

	targets, err := s.fanOutTargets(ctx, group, req.Department)
	if err != nil {
		return nil, err
	}

	if err := s.assertAvailable(ctx, group, targets); err != nil {
		return nil, err
	}

	conflict, err := s.findConflict(ctx, group, req)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, s.wrapConflict(conflict)
	}

	placementID := uuid.NewString()
	appointments := make([]models.Appointment, 0, len(targets))
	for _, department := range targets {
		appointments = append(appointments, models.Appointment{
			ID:             uuid.NewString(),
			PlacementID:    placementID,
			GroupID:        group.ID,
			CourseID:       group.CourseID,
			Subject:        group.Subject,
			InstructorID:   group.InstructorID,
			InstructorName: group.InstructorName,
			Variant:        group.Variant,
			GroupNumber:    group.GroupNumber,
			Department:     department,
			Level:          group.Level,
			Day:            req.Day,
			StartHour:      req.StartHour,
			EndHour:        req.EndHour,
			Room:           req.Room,
		})
	}

	if err := s.appointments.BulkCreate(ctx, appointments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist placement")
	}

	for _, appt := range appointments {
		s.board.Insert(appt)
	}

	s.logger.Info("placement committed",
		zap.String("placement_id", placementID),
		zap.String("group_id", group.ID),
		zap.String("day", string(req.Day)),
		zap.Int("start_hour", req.StartHour),
		zap.Int("end_hour", req.EndHour),
		zap.String("room", req.Room),
		zap.Int("departments", len(targets)),
	)

	return &PlaceResult{PlacementID: placementID, Appointments: appointments}, nil
}

// Unplace removes a placement and every fan-out replica it produced. The id
// may be a placement id or the id of any single replica. The affected groups
// return to their departments' pools by derivation.
func (s *PlacementService) Unplace(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "placement id is required")
	}

	placementID := id
	removed, err := s.appointments.DeleteByPlacement(ctx, placementID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete placement")
	}
	if removed == 0 {
		appt, err := s.appointments.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
			}
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve placement")
		}
		placementID = appt.PlacementID
		removed, err = s.appointments.DeleteByPlacement(ctx, placementID)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete placement")
		}
	}
	if removed == 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
	}

	s.board.RemoveByPlacement(placementID)

	s.logger.Info("placement removed",
		zap.String("placement_id", placementID),
		zap.Int64("appointments", removed),
	)
	return int(removed), nil
}

// assertAvailable rejects a proposal whose group already holds an
// appointment for any of the target departments, on the board or in the
// store.
func (s *PlacementService) assertAvailable(ctx context.Context, group *models.Group, targets []string) error {
	for _, department := range targets {
		taken, err := s.appointments.ExistsForGroup(ctx, group.ID, department)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group availability")
		}
		if taken || s.board.HasGroup(group.ID, department) {
			return appErrors.Clone(appErrors.ErrAlreadyScheduled,
				fmt.Sprintf("group %s is already placed for department %s", group.ID, department))
		}
	}
	return nil
}

// admitProposal runs the structural checks every proposal passes before any
// conflict scan: payload shape, grid membership, day membership, duration
// and room existence.
func (s *PlacementService) admitProposal(ctx context.Context, req PlaceRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}

	if !models.IsTeachingDay(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", req.Day))
	}

	if err := s.grid.ValidateInterval(req.StartHour, req.EndHour); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInterval, err.Error())
	}

	group, err := s.loadGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	if group.DurationHours > 0 && req.EndHour-req.StartHour != group.DurationHours {
		return nil, appErrors.Clone(appErrors.ErrInvalidInterval,
			fmt.Sprintf("group requires %d hour(s), interval spans %d", group.DurationHours, req.EndHour-req.StartHour))
	}

	if !containsDepartment(group.Departments, req.Department) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("department %s does not offer this group", req.Department))
	}

	if _, err := s.rooms.FindByName(ctx, req.Room); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownRoom, fmt.Sprintf("room %q does not exist", req.Room))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up room")
	}

	return group, nil
}

// findConflict scans the instructor dimension first, then the room
// dimension, against the working board and then the store. Fan-out replicas
// of the same lecture are never conflicts with each other; that identity is
// course and level, not display strings.
func (s *PlacementService) findConflict(ctx context.Context, group *models.Group, req PlaceRequest) (*models.PlacementConflict, error) {
	local := s.board.ByInstructor(group.InstructorID, req.Day)
	if c := firstOverlap(local, group, req, "instructor"); c != nil {
		return c, nil
	}
	stored, err := s.appointments.FindByInstructor(ctx, group.InstructorID, req.Day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan instructor bookings")
	}
	if c := firstOverlap(stored, group, req, "instructor"); c != nil {
		return c, nil
	}

	local = s.board.ByRoom(req.Room, req.Day)
	if c := firstOverlap(local, group, req, "room"); c != nil {
		return c, nil
	}
	stored, err = s.appointments.FindByRoom(ctx, req.Room, req.Day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan room bookings")
	}
	if c := firstOverlap(stored, group, req, "room"); c != nil {
		return c, nil
	}

	return nil, nil
}

func firstOverlap(appointments []models.Appointment, group *models.Group, req PlaceRequest, dimension string) *models.PlacementConflict {
	for _, appt := range appointments {
		if !models.Overlaps(req.StartHour, req.EndHour, appt.StartHour, appt.EndHour) {
			continue
		}
		if appt.SameLecture(*group) {
			continue
		}
		return &models.PlacementConflict{
			AppointmentID:  appt.ID,
			Subject:        appt.Subject,
			InstructorName: appt.InstructorName,
			Department:     appt.Department,
			Day:            appt.Day,
			StartHour:      appt.StartHour,
			EndHour:        appt.EndHour,
			Room:           appt.Room,
			Dimension:      dimension,
		}
	}
	return nil
}

func (s *PlacementService) wrapConflict(conflict *models.PlacementConflict) error {
	base := appErrors.ErrRoomConflict
	if conflict.Dimension == "instructor" {
		base = appErrors.ErrInstructorConflict
	}
	return appErrors.Wrap(
		&models.PlacementConflictError{Type: base.Code, Message: base.Message, Conflict: *conflict},
		base.Code, base.Status,
		fmt.Sprintf("%s: %s by %s occupies %s %d-%d in %s",
			base.Message, conflict.Subject, conflict.InstructorName,
			conflict.Day, conflict.StartHour, conflict.EndHour, conflict.Room),
	)
}

// fanOutTargets returns the departments that will each receive a replica.
func (s *PlacementService) fanOutTargets(ctx context.Context, group *models.Group, requested string) ([]string, error) {
	if !group.IsLecture() {
		return []string{requested}, nil
	}
	targets, err := s.sharedDepartments(ctx, group)
	if err != nil {
		return nil, err
	}
	if !containsDepartment(targets, requested) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("department %s does not offer course %s", requested, group.CourseID))
	}
	return targets, nil
}

func (s *PlacementService) sharedDepartments(ctx context.Context, group *models.Group) ([]string, error) {
	departments, err := s.courses.SharedDepartments(ctx, group.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve shared departments")
	}
	if len(departments) == 0 {
		departments = group.Departments
	}
	return departments, nil
}

func (s *PlacementService) loadGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	// A practical is owned by exactly one department, whatever its course
	// shares. Only lectures carry the course's full offer list.
	if !group.IsLecture() {
		group.Departments = []string{group.Department}
	}
	return group, nil
}

func containsDepartment(departments []string, department string) bool {
	for _, d := range departments {
		if d == department {
			return true
		}
	}
	return false
}
