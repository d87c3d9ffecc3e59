package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
)

type exportAppointmentRepository interface {
	ListByDepartment(ctx context.Context, department, level string) ([]models.Appointment, error)
}

// ExportConfig carries the institution strings printed on exported sheets.
type ExportConfig struct {
	Institution  string
	FooterNotice string
}

// ExportService renders committed schedules into downloadable documents.
type ExportService struct {
	appointments exportAppointmentRepository
	exporter     *export.PDFExporter
	grid         models.TimeGrid
	config       ExportConfig
	logger       *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(appointments exportAppointmentRepository, exporter *export.PDFExporter, grid models.TimeGrid, config ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exporter == nil {
		exporter = export.NewPDFExporter()
	}
	return &ExportService{
		appointments: appointments,
		exporter:     exporter,
		grid:         grid,
		config:       config,
		logger:       logger,
	}
}

// WeeklyPDF renders one (department, level) week as a printable grid, days
// down the side and hour slots across the top.
func (s *ExportService) WeeklyPDF(ctx context.Context, department, level string) ([]byte, string, error) {
	if department == "" || level == "" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "department and level are required")
	}

	appointments, err := s.appointments.ListByDepartment(ctx, department, level)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule for export")
	}

	dataset := s.buildDataset(appointments)

	title := fmt.Sprintf("%s %s - Level %s", s.config.Institution, department, level)
	payload, err := s.exporter.Render(dataset, title, s.config.FooterNotice)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule pdf")
	}

	filename := fmt.Sprintf("timetable_%s_%s.pdf", sanitizeFilePart(department), sanitizeFilePart(level))
	return payload, filename, nil
}

func (s *ExportService) buildDataset(appointments []models.Appointment) export.Dataset {
	hours := s.grid.Hours()
	headers := make([]string, 0, len(hours))
	headers = append(headers, "Day")
	for i := 0; i+1 < len(hours); i++ {
		headers = append(headers, fmt.Sprintf("%02d-%02d", hours[i], hours[i+1]))
	}

	byDay := make(map[models.Weekday][]models.Appointment)
	for _, appt := range appointments {
		byDay[appt.Day] = append(byDay[appt.Day], appt)
	}

	rows := make([]map[string]string, 0, 7)
	for _, day := range models.Weekdays() {
		row := map[string]string{"Day": string(day)}
		for _, appt := range byDay[day] {
			label := appt.Subject
			if appt.Variant == models.VariantPractical {
				label = fmt.Sprintf("%s (G%d)", appt.Subject, appt.GroupNumber)
			}
			cell := fmt.Sprintf("%s\n%s", label, appt.Room)
			for h := appt.StartHour; h < appt.EndHour; h++ {
				slot := fmt.Sprintf("%02d-%02d", h, h+1)
				row[slot] = cell
			}
		}
		rows = append(rows, row)
	}

	return export.Dataset{Headers: headers, Rows: rows}
}

func sanitizeFilePart(part string) string {
	part = strings.ToLower(strings.TrimSpace(part))
	part = strings.ReplaceAll(part, " ", "_")
	return part
}
