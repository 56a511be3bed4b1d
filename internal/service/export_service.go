package service

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/pkg/export"
	"github.com/danceclub/timetable-api/pkg/timeutil"
)

type csvRenderer interface {
	Render(rows []export.TimetableRow) ([]byte, error)
}

type pdfRenderer interface {
	Render(sections []export.Section, title string) ([]byte, error)
}

// ExportService flattens generated timetables into downloadable documents.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// RenderCSV emits one row per timetable entry across all days.
func (s *ExportService) RenderCSV(result dto.MultiDayResult) ([]byte, error) {
	rows := make([]export.TimetableRow, 0)
	for _, day := range result.Days {
		for _, l := range day.Lessons {
			rows = append(rows, export.TimetableRow{
				Date:      day.Date,
				Start:     timeutil.FormatLocal(l.Start),
				End:       timeutil.FormatLocal(l.End),
				Type:      l.Type,
				Teacher:   l.Teacher,
				Student:   l.Student,
				Room:      l.Room,
				Duration:  l.Duration,
				BreakType: l.BreakType,
				BreakFor:  l.BreakForName,
			})
		}
	}
	payload, err := s.csv.Render(rows)
	if err != nil {
		return nil, fmt.Errorf("render timetable csv: %w", err)
	}
	s.logger.Debug("timetable exported", zap.String("format", "csv"), zap.Int("rows", len(rows)))
	return payload, nil
}

// RenderPDF emits one table per day plus a closing summary table.
func (s *ExportService) RenderPDF(result dto.MultiDayResult, title string) ([]byte, error) {
	headers := []string{"Start", "End", "Type", "Teacher", "Student", "Room"}

	sections := make([]export.Section, 0, len(result.Days)+1)
	for _, day := range result.Days {
		rows := make([]map[string]string, 0, len(day.Lessons))
		for _, l := range day.Lessons {
			rows = append(rows, map[string]string{
				"Start":   timeutil.FormatLocal(l.Start),
				"End":     timeutil.FormatLocal(l.End),
				"Type":    l.Type,
				"Teacher": l.Teacher,
				"Student": l.Student,
				"Room":    l.Room,
			})
		}
		sections = append(sections, export.Section{
			Label: day.Date,
			Data:  export.Dataset{Headers: headers, Rows: rows},
		})
	}

	sections = append(sections, summarySection(result.Summary))

	payload, err := s.pdf.Render(sections, title)
	if err != nil {
		return nil, fmt.Errorf("render timetable pdf: %w", err)
	}
	s.logger.Debug("timetable exported", zap.String("format", "pdf"), zap.Int("days", len(result.Days)))
	return payload, nil
}

func summarySection(summary dto.Summary) export.Section {
	unmet := append([]string(nil), summary.StudentsUnmet...)
	sort.Strings(unmet)

	unmetLabel := "none"
	if len(unmet) > 0 {
		unmetLabel = fmt.Sprintf("%v", unmet)
	}

	return export.Section{
		Label: "Summary",
		Data: export.Dataset{
			Headers: []string{"Total Lessons", "Students Satisfied", "Students Unmet"},
			Rows: []map[string]string{{
				"Total Lessons":      fmt.Sprintf("%d", summary.TotalLessons),
				"Students Satisfied": fmt.Sprintf("%d", summary.StudentsSatisfied),
				"Students Unmet":     unmetLabel,
			}},
		},
	}
}
