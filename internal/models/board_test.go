package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardAppointment(id, placementID, groupID, department string, day Weekday, start, end int) Appointment {
	return Appointment{
		ID:           id,
		PlacementID:  placementID,
		GroupID:      groupID,
		InstructorID: "inst-1",
		Department:   department,
		Level:        "2",
		Day:          day,
		StartHour:    start,
		EndHour:      end,
		Room:         "R1",
	}
}

func TestBoardInsertKeepsDaysOrdered(t *testing.T) {
	board := NewBoard()
	board.Insert(boardAppointment("a2", "p2", "g2", "CS", Sunday, 12, 14))
	board.Insert(boardAppointment("a1", "p1", "g1", "CS", Sunday, 9, 11))

	week := board.Week("CS", "2")
	require.Len(t, week[Sunday], 2)
	assert.Equal(t, "a1", week[Sunday][0].ID)
	assert.Equal(t, "a2", week[Sunday][1].ID)
}

func TestBoardRemoveByPlacementDropsAllReplicas(t *testing.T) {
	board := NewBoard()
	board.Insert(boardAppointment("a1", "p1", "g1", "CS", Sunday, 9, 11))
	replica := boardAppointment("a2", "p1", "g1", "MATH", Sunday, 9, 11)
	board.Insert(replica)
	board.Insert(boardAppointment("a3", "p2", "g2", "CS", Monday, 9, 11))

	removed := board.RemoveByPlacement("p1")
	assert.Len(t, removed, 2)

	assert.Empty(t, board.Week("CS", "2")[Sunday])
	assert.Empty(t, board.Week("MATH", "2")[Sunday])
	assert.Len(t, board.Week("CS", "2")[Monday], 1)
}

func TestBoardByInstructorScansAllBuckets(t *testing.T) {
	board := NewBoard()
	board.Insert(boardAppointment("a1", "p1", "g1", "CS", Sunday, 9, 11))
	board.Insert(boardAppointment("a2", "p1", "g1", "MATH", Sunday, 9, 11))
	board.Insert(boardAppointment("a3", "p2", "g2", "CS", Monday, 9, 11))

	assert.Len(t, board.ByInstructor("inst-1", Sunday), 2)
	assert.Len(t, board.ByInstructor("inst-1", Monday), 1)
	assert.Empty(t, board.ByInstructor("inst-2", Sunday))
}

func TestBoardByRoomScansAllBuckets(t *testing.T) {
	board := NewBoard()
	board.Insert(boardAppointment("a1", "p1", "g1", "CS", Sunday, 9, 11))
	board.Insert(boardAppointment("a2", "p2", "g2", "MATH", Sunday, 14, 16))

	assert.Len(t, board.ByRoom("R1", Sunday), 2)
	assert.Empty(t, board.ByRoom("R2", Sunday))
}

func TestBoardHasGroupIsPerDepartment(t *testing.T) {
	board := NewBoard()
	board.Insert(boardAppointment("a1", "p1", "g1", "CS", Sunday, 9, 11))

	assert.True(t, board.HasGroup("g1", "CS"))
	assert.False(t, board.HasGroup("g1", "MATH"))
	assert.False(t, board.HasGroup("g2", "CS"))
}

func TestBoardLoadReplacesContents(t *testing.T) {
	board := NewBoard()
	board.Insert(boardAppointment("a1", "p1", "g1", "CS", Sunday, 9, 11))

	board.Load([]Appointment{boardAppointment("a9", "p9", "g9", "EE", Tuesday, 10, 12)})

	assert.Empty(t, board.Week("CS", "2")[Sunday])
	assert.Len(t, board.Week("EE", "2")[Tuesday], 1)
}

func TestSameLectureIdentity(t *testing.T) {
	lecture := Group{ID: "g1", CourseID: "c1", Level: "2", Variant: VariantLecture}
	practical := Group{ID: "g2", CourseID: "c1", Level: "2", Variant: VariantPractical}

	replica := Appointment{CourseID: "c1", Level: "2", Variant: VariantLecture}
	otherCourse := Appointment{CourseID: "c2", Level: "2", Variant: VariantLecture}
	otherLevel := Appointment{CourseID: "c1", Level: "3", Variant: VariantLecture}
	practicalAppt := Appointment{CourseID: "c1", Level: "2", Variant: VariantPractical}

	assert.True(t, replica.SameLecture(lecture))
	assert.False(t, otherCourse.SameLecture(lecture))
	assert.False(t, otherLevel.SameLecture(lecture))
	assert.False(t, practicalAppt.SameLecture(lecture))
	assert.False(t, replica.SameLecture(practical))
}
