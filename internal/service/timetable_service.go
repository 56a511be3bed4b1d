package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/internal/schedule"
	appErrors "github.com/danceclub/timetable-api/pkg/errors"
)

// TimetableService fronts the scheduling engine. Generated multi-day
// results are cached under a result ID so break updates can be applied
// incrementally without the caller resending the whole timetable.
type TimetableService struct {
	validator       *validator.Validate
	logger          *zap.Logger
	defaults        dto.TimetableConfig
	defaultSchedule dto.DaySchedule
	store           *resultStore
}

// TimetableServiceConfig governs engine defaults and result retention.
type TimetableServiceConfig struct {
	ResultTTL       time.Duration
	Defaults        dto.TimetableConfig
	DefaultSchedule dto.DaySchedule
}

// NewTimetableService wires the scheduling service.
func NewTimetableService(validate *validator.Validate, logger *zap.Logger, cfg TimetableServiceConfig) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 30 * time.Minute
	}
	if cfg.Defaults.LessonDuration <= 0 {
		cfg.Defaults = schedule.DefaultConfig()
	}
	if cfg.DefaultSchedule.Start == "" || cfg.DefaultSchedule.End == "" {
		cfg.DefaultSchedule = schedule.DefaultDaySchedule
	}
	return &TimetableService{
		validator:       validate,
		logger:          logger,
		defaults:        cfg.Defaults,
		defaultSchedule: cfg.DefaultSchedule,
		store:           newResultStore(cfg.ResultTTL),
	}
}

// Validate checks a configuration without scheduling anything. Structural
// findings come back in the result; only a malformed payload is an error.
func (s *TimetableService) Validate(ctx context.Context, req dto.ValidateRequest) (*dto.ValidationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation payload")
	}
	result := schedule.ValidateConfiguration(req.StartDate, req.EndDate, req.Teachers, req.Students, req.Breaks)
	return &result, nil
}

// Generate schedules a single day.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateRequest) (*dto.DayTimetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	daySchedule := s.defaultSchedule
	if req.DaySchedule != nil {
		daySchedule = *req.DaySchedule
	}

	result := schedule.Generate(req.Date, req.Teachers, req.Students, req.Breaks, daySchedule, s.engineConfig(req.Config), s.logger)

	s.logger.Info("single day generated",
		zap.String("date", req.Date),
		zap.Int("entries", len(result.Lessons)),
		zap.Bool("failed", result.Error != ""),
	)
	return &result, nil
}

// GenerateRange schedules an inclusive date range and retains the result
// for later break updates.
func (s *TimetableService) GenerateRange(ctx context.Context, req dto.GenerateRangeRequest) (*dto.MultiDayResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid range generation payload")
	}

	result := schedule.GenerateRange(req.StartDate, req.EndDate, req.Teachers, req.Students, req.Breaks, req.DaySchedules, s.engineConfig(req.Config), s.logger)

	if result.Error == "" {
		result.ResultID = uuid.NewString()
		s.store.Save(storedResult{
			ID:          result.ResultID,
			Result:      result,
			Teachers:    req.Teachers,
			Students:    req.Students,
			RequestedAt: time.Now(),
		})
	}

	s.logger.Info("range generated",
		zap.String("start", req.StartDate),
		zap.String("end", req.EndDate),
		zap.Int("days", len(result.Days)),
		zap.Int("lessons", result.Summary.TotalLessons),
		zap.Int("unmet", len(result.Summary.StudentsUnmet)),
	)
	return &result, nil
}

// UpdateBreaks reworks a generated timetable against a replacement break
// list. The base timetable comes from the store via ResultID, or inline
// via Existing; the revised result is stored under a fresh ID.
func (s *TimetableService) UpdateBreaks(ctx context.Context, req dto.UpdateBreaksRequest) (*dto.MultiDayResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid break update payload")
	}

	existing := req.Existing
	teachers := req.Teachers
	students := req.Students
	if existing == nil {
		if req.ResultID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "either resultId or existing timetable is required")
		}
		stored, ok := s.store.Get(req.ResultID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable result not found or expired")
		}
		existing = &stored.Result
		if len(teachers) == 0 {
			teachers = stored.Teachers
		}
		if len(students) == 0 {
			students = stored.Students
		}
	}

	result := schedule.UpdateWithNewBreaks(*existing, req.NewBreaks, teachers, students, req.DaySchedules, s.engineConfig(req.Config), s.logger)

	result.ResultID = uuid.NewString()
	s.store.Save(storedResult{
		ID:          result.ResultID,
		Result:      result,
		Teachers:    teachers,
		Students:    students,
		RequestedAt: time.Now(),
	})

	s.logger.Info("breaks updated",
		zap.String("resultId", result.ResultID),
		zap.Int("lessons", result.Summary.TotalLessons),
		zap.Int("unmet", len(result.Summary.StudentsUnmet)),
	)
	return &result, nil
}

// Result returns a retained multi-day result by ID.
func (s *TimetableService) Result(ctx context.Context, id string) (*dto.MultiDayResult, error) {
	stored, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable result not found or expired")
	}
	return &stored.Result, nil
}

// SuggestDates asks the advisor for better-fitting ranges.
func (s *TimetableService) SuggestDates(ctx context.Context, req dto.SuggestDatesRequest) ([]dto.AlternativeDateSuggestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date suggestion payload")
	}
	return schedule.SuggestAlternativeDates(req.StartDate, req.EndDate, req.Teachers, req.Students, req.Breaks, s.defaults, s.logger), nil
}

func (s *TimetableService) engineConfig(override *dto.TimetableConfig) dto.TimetableConfig {
	if override != nil {
		return *override
	}
	return s.defaults
}

// --- Result retention ---

type storedResult struct {
	ID          string
	Result      dto.MultiDayResult
	Teachers    []dto.Teacher
	Students    []dto.Student
	RequestedAt time.Time
}

type resultStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]storedResult
}

func newResultStore(ttl time.Duration) *resultStore {
	return &resultStore{
		ttl:   ttl,
		items: make(map[string]storedResult),
	}
}

func (s *resultStore) Save(result storedResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[result.ID] = result
}

func (s *resultStore) Get(id string) (storedResult, bool) {
	s.mu.RLock()
	result, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return storedResult{}, false
	}
	if time.Since(result.RequestedAt) > s.ttl {
		s.Delete(id)
		return storedResult{}, false
	}
	return result, true
}

func (s *resultStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
