package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
	appErrors "github.com/danceclub/timetable-api/pkg/errors"
)

func newTimetableFixture(t *testing.T, cfg TimetableServiceConfig) *TimetableService {
	t.Helper()
	return NewTimetableService(validator.New(), zap.NewNop(), cfg)
}

func fixtureTeachers() []dto.Teacher {
	return []dto.Teacher{{
		Name:             "Anna",
		Availability:     []string{"09:00-12:00"},
		MaxLessonsPerDay: 4,
		Room:             "Studio 1",
	}}
}

func fixtureStudents() []dto.Student {
	return []dto.Student{{
		Name:           "Milan",
		Availability:   []string{"09:00-12:00"},
		DesiredLessons: 2,
		Priority:       5,
	}}
}

func TestTimetableServiceValidate(t *testing.T) {
	svc := newTimetableFixture(t, TimetableServiceConfig{})

	result, err := svc.Validate(context.Background(), dto.ValidateRequest{
		StartDate: "2025-01-06",
		EndDate:   "2025-01-07",
		Teachers:  fixtureTeachers(),
		Students:  fixtureStudents(),
	})
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestTimetableServiceValidateRejectsMissingDates(t *testing.T) {
	svc := newTimetableFixture(t, TimetableServiceConfig{})

	_, err := svc.Validate(context.Background(), dto.ValidateRequest{})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTimetableServiceGenerateDay(t *testing.T) {
	svc := newTimetableFixture(t, TimetableServiceConfig{})

	result, err := svc.Generate(context.Background(), dto.GenerateRequest{
		Date:        "2025-01-06",
		Teachers:    fixtureTeachers(),
		Students:    fixtureStudents(),
		DaySchedule: &dto.DaySchedule{Start: "09:00", End: "12:00"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Error)
	assert.Len(t, result.Lessons, 2)
}

func TestTimetableServiceGenerateRangeStoresResult(t *testing.T) {
	svc := newTimetableFixture(t, TimetableServiceConfig{})

	result, err := svc.GenerateRange(context.Background(), dto.GenerateRangeRequest{
		StartDate: "2025-01-06",
		EndDate:   "2025-01-07",
		Teachers:  fixtureTeachers(),
		Students:  fixtureStudents(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.ResultID)

	fetched, err := svc.Result(context.Background(), result.ResultID)
	require.NoError(t, err)
	assert.Equal(t, result.Summary, fetched.Summary)
}

func TestTimetableServiceResultExpires(t *testing.T) {
	svc := newTimetableFixture(t, TimetableServiceConfig{ResultTTL: time.Nanosecond})

	result, err := svc.GenerateRange(context.Background(), dto.GenerateRangeRequest{
		StartDate: "2025-01-06",
		EndDate:   "2025-01-06",
		Teachers:  fixtureTeachers(),
		Students:  fixtureStudents(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.ResultID)

	time.Sleep(time.Millisecond)

	_, err = svc.Result(context.Background(), result.ResultID)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTimetableServiceUpdateBreaksByResultID(t *testing.T) {
	svc := newTimetableFixture(t, TimetableServiceConfig{})

	generated, err := svc.GenerateRange(context.Background(), dto.GenerateRangeRequest{
		StartDate: "2025-01-06",
		EndDate:   "2025-01-06",
		Teachers:  fixtureTeachers(),
		Students:  fixtureStudents(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, generated.ResultID)

	// Teachers and students come from the stored result, so the caller
	// only resends the breaks.
	updated, err := svc.UpdateBreaks(context.Background(), dto.UpdateBreaksRequest{
		ResultID:  generated.ResultID,
		NewBreaks: []string{"09:00-09:45"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, updated.ResultID)
	assert.NotEqual(t, generated.ResultID, updated.ResultID)
	assert.Equal(t, 2, updated.Summary.TotalLessons)

	for _, day := range updated.Days {
		for _, l := range day.Lessons {
			if l.Type != dto.EntryLesson {
				continue
			}
			assert.False(t, l.Start.Before(day.Lessons[0].Start))
		}
	}
}

func TestTimetableServiceUpdateBreaksRequiresSource(t *testing.T) {
	svc := newTimetableFixture(t, TimetableServiceConfig{})

	_, err := svc.UpdateBreaks(context.Background(), dto.UpdateBreaksRequest{
		NewBreaks: []string{"09:00-09:45"},
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTimetableServiceUpdateBreaksUnknownResult(t *testing.T) {
	svc := newTimetableFixture(t, TimetableServiceConfig{})

	_, err := svc.UpdateBreaks(context.Background(), dto.UpdateBreaksRequest{
		ResultID:  "missing",
		NewBreaks: []string{"09:00-09:45"},
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTimetableServiceSuggestDates(t *testing.T) {
	svc := newTimetableFixture(t, TimetableServiceConfig{})

	_, err := svc.SuggestDates(context.Background(), dto.SuggestDatesRequest{
		StartDate: "2025-01-06",
		EndDate:   "2025-01-07",
		Teachers:  fixtureTeachers(),
		Students:  fixtureStudents(),
	})
	require.NoError(t, err)
}
