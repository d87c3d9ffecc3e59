package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
)

func newExportFixture(appointments []models.Appointment) *ExportService {
	repo := &mockScheduleRepo{appointments: appointments}
	return NewExportService(repo, nil, models.DefaultGrid(), ExportConfig{
		Institution:  "Faculty of Engineering",
		FooterNotice: "Generated by the planning office",
	}, nil)
}

func TestWeeklyPDFRendersDocument(t *testing.T) {
	svc := newExportFixture(weekAppointments())

	payload, filename, err := svc.WeeklyPDF(context.Background(), "CS", "2")
	require.NoError(t, err)
	assert.Equal(t, "timetable_cs_2.pdf", filename)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestWeeklyPDFRequiresFilter(t *testing.T) {
	svc := newExportFixture(nil)

	_, _, err := svc.WeeklyPDF(context.Background(), "CS", "")
	assertErrCode(t, err, appErrors.ErrValidation.Code)
}

func TestBuildDatasetFillsOccupiedSlots(t *testing.T) {
	svc := newExportFixture(nil)

	dataset := svc.buildDataset([]models.Appointment{
		{
			Subject: "Algorithms", Variant: models.VariantPractical, GroupNumber: 2,
			Department: "CS", Level: "2",
			Day: models.Sunday, StartHour: 9, EndHour: 11, Room: "R1",
		},
	})

	// Day column plus one column per hour slot.
	require.Len(t, dataset.Headers, 12)
	require.Len(t, dataset.Rows, 7)

	sunday := dataset.Rows[1]
	assert.Equal(t, "SUNDAY", sunday["Day"])
	assert.Contains(t, sunday["09-10"], "Algorithms (G2)")
	assert.Contains(t, sunday["10-11"], "R1")
	assert.Empty(t, sunday["11-12"])
}
