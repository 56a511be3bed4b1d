package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/internal/service"
	"github.com/danceclub/timetable-api/pkg/config"
	"github.com/danceclub/timetable-api/pkg/logger"
)

// request is the one-shot CLI payload. Only the fields relevant to the
// selected mode need to be filled in.
type request struct {
	Date         string                     `json:"date,omitempty"`
	StartDate    string                     `json:"startDate,omitempty"`
	EndDate      string                     `json:"endDate,omitempty"`
	Teachers     []dto.Teacher              `json:"teachers"`
	Students     []dto.Student              `json:"students"`
	Breaks       []string                   `json:"breaks"`
	DaySchedule  *dto.DaySchedule           `json:"daySchedule,omitempty"`
	DaySchedules map[string]dto.DaySchedule `json:"daySchedules,omitempty"`
	Config       *dto.TimetableConfig       `json:"config,omitempty"`
	Existing     *dto.MultiDayResult        `json:"existing,omitempty"`
	NewBreaks    []string                   `json:"newBreaks,omitempty"`
}

func main() {
	var (
		inPath  = flag.String("in", "", "path to the JSON request, - for stdin")
		outPath = flag.String("out", "", "output path, - or empty for stdout")
		format  = flag.String("format", "json", "output format: json, csv or pdf")
		mode    = flag.String("mode", "range", "operation: range, day, validate, rebreak or suggest")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	req, err := readRequest(*inPath)
	if err != nil {
		log.Fatalf("failed to read request: %v", err)
	}

	svc := service.NewTimetableService(validator.New(), logr, service.TimetableServiceConfig{
		ResultTTL: cfg.Scheduler.ResultTTL,
		Defaults: dto.TimetableConfig{
			LessonDuration:    cfg.Scheduler.LessonDuration,
			StudentBreakAfter: cfg.Scheduler.StudentBreakAfter,
			TeacherBreakAfter: cfg.Scheduler.TeacherBreakAfter,
		},
		DefaultSchedule: dto.DaySchedule{Start: cfg.Scheduler.DayStart, End: cfg.Scheduler.DayEnd},
	})
	exporter := service.NewExportService(nil, nil, logr)

	ctx := context.Background()

	var payload []byte
	switch *mode {
	case "validate":
		result, err := svc.Validate(ctx, dto.ValidateRequest{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Teachers:  req.Teachers,
			Students:  req.Students,
			Breaks:    req.Breaks,
		})
		if err != nil {
			log.Fatalf("validation failed: %v", err)
		}
		payload = mustJSON(result)

	case "day":
		result, err := svc.Generate(ctx, dto.GenerateRequest{
			Date:        req.Date,
			Teachers:    req.Teachers,
			Students:    req.Students,
			Breaks:      req.Breaks,
			DaySchedule: req.DaySchedule,
			Config:      req.Config,
		})
		if err != nil {
			log.Fatalf("generation failed: %v", err)
		}
		payload = mustJSON(result)

	case "range":
		result, err := svc.GenerateRange(ctx, dto.GenerateRangeRequest{
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			Teachers:     req.Teachers,
			Students:     req.Students,
			Breaks:       req.Breaks,
			DaySchedules: req.DaySchedules,
			Config:       req.Config,
		})
		if err != nil {
			log.Fatalf("generation failed: %v", err)
		}
		payload, err = render(exporter, *result, *format, cfg.Export.PDFTitle)
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}

	case "rebreak":
		result, err := svc.UpdateBreaks(ctx, dto.UpdateBreaksRequest{
			Existing:     req.Existing,
			NewBreaks:    req.NewBreaks,
			Teachers:     req.Teachers,
			Students:     req.Students,
			DaySchedules: req.DaySchedules,
			Config:       req.Config,
		})
		if err != nil {
			log.Fatalf("break update failed: %v", err)
		}
		payload, err = render(exporter, *result, *format, cfg.Export.PDFTitle)
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}

	case "suggest":
		suggestions, err := svc.SuggestDates(ctx, dto.SuggestDatesRequest{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Teachers:  req.Teachers,
			Students:  req.Students,
			Breaks:    req.Breaks,
		})
		if err != nil {
			log.Fatalf("suggestion failed: %v", err)
		}
		payload = mustJSON(suggestions)

	default:
		log.Fatalf("unknown mode %q", *mode)
	}

	if err := writeOutput(*outPath, payload); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}
}

func render(exporter *service.ExportService, result dto.MultiDayResult, format, title string) ([]byte, error) {
	switch format {
	case "json":
		return mustJSON(result), nil
	case "csv":
		return exporter.RenderCSV(result)
	case "pdf":
		return exporter.RenderPDF(result, title)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func readRequest(path string) (*request, error) {
	if path == "" {
		return nil, fmt.Errorf("missing -in flag")
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	req := &request{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("invalid request payload: %w", err)
	}
	return req, nil
}

func writeOutput(path string, payload []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(payload)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func mustJSON(v any) []byte {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode result: %v", err)
	}
	return append(out, '\n')
}
