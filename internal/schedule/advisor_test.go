package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
)

func withFixedNow(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = prev })
}

func TestSuggestAlternativeDatesHighSatisfaction(t *testing.T) {
	withFixedNow(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	teachers := []dto.Teacher{testTeacher("Anna", "Studio 1", 8, "08:00-16:00")}
	students := []dto.Student{testStudent("Milan", 4, 5, "08:00-16:00")}

	suggestions := SuggestAlternativeDates("2025-01-06", "2025-01-07", teachers, students, nil, DefaultConfig(), zap.NewNop())
	require.NotEmpty(t, suggestions)

	var reasons []string
	for _, s := range suggestions {
		assert.Greater(t, s.ExpectedSatisfaction, 0.7)
		reasons = append(reasons, s.Reason)
	}
	assert.Contains(t, reasons, "Starting 1 day later")
	assert.Contains(t, reasons, "Starting 2 days later")
	assert.Contains(t, reasons, "Extending by 1 day")
	assert.Contains(t, reasons, "Weekend alternative")

	for i := 1; i < len(suggestions); i++ {
		assert.GreaterOrEqual(t, suggestions[i-1].ExpectedSatisfaction, suggestions[i].ExpectedSatisfaction)
	}
}

func TestSuggestAlternativeDatesWeekendRange(t *testing.T) {
	withFixedNow(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	teachers := []dto.Teacher{testTeacher("Anna", "Studio 1", 8, "08:00-16:00")}
	students := []dto.Student{testStudent("Milan", 2, 5, "08:00-16:00")}

	// 2025-01-06 is a Monday, so the weekend candidate starts the
	// following Saturday.
	suggestions := SuggestAlternativeDates("2025-01-06", "2025-01-07", teachers, students, nil, DefaultConfig(), zap.NewNop())

	var weekend *dto.AlternativeDateSuggestion
	for i := range suggestions {
		if suggestions[i].Reason == "Weekend alternative" {
			weekend = &suggestions[i]
		}
	}
	require.NotNil(t, weekend)
	assert.Equal(t, "2025-01-11 to 2025-01-12", weekend.Date)
}

func TestSuggestAlternativeDatesLowSatisfaction(t *testing.T) {
	withFixedNow(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	teachers := []dto.Teacher{testTeacher("Anna", "Studio 1", 1, "08:00-08:45")}
	students := []dto.Student{testStudent("Milan", 200, 5, "08:00-08:45")}

	suggestions := SuggestAlternativeDates("2025-01-06", "2025-01-07", teachers, students, nil, DefaultConfig(), zap.NewNop())
	assert.Empty(t, suggestions)
}

func TestSuggestAlternativeDatesHorizonCutoff(t *testing.T) {
	withFixedNow(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC))

	teachers := []dto.Teacher{testTeacher("Anna", "Studio 1", 8, "08:00-16:00")}
	students := []dto.Student{testStudent("Milan", 2, 5, "08:00-16:00")}

	// The original range already ends around the 90 day horizon, so only
	// the nearest shifts survive.
	far := SuggestAlternativeDates("2025-01-06", "2025-01-07", teachers, students, nil, DefaultConfig(), zap.NewNop())
	withFixedNow(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	none := SuggestAlternativeDates("2025-01-06", "2025-01-07", teachers, students, nil, DefaultConfig(), zap.NewNop())

	assert.NotEmpty(t, far)
	assert.Empty(t, none, "candidates beyond the horizon are discarded")
}

func TestSuggestAlternativeDatesRejectsBadDates(t *testing.T) {
	suggestions := SuggestAlternativeDates("bad", "2025-01-07", nil, nil, nil, DefaultConfig(), zap.NewNop())
	assert.Nil(t, suggestions)
}

func TestExpectedSatisfactionBlend(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

	teachers := []dto.Teacher{testTeacher("Anna", "Studio 1", 8, "08:00-16:00")}
	students := []dto.Student{testStudent("Milan", 4, 5, "08:00-16:00")}

	// Capacity 16 vs demand 4 caps at 1.0; the 480 minute overlap is a
	// full overlap, so the blend is 0.6 + 0.4.
	assert.InDelta(t, 1.0, expectedSatisfaction(start, end, teachers, students), 1e-9)

	narrow := []dto.Student{testStudent("Milan", 4, 5, "08:00-09:00")}
	// 60 of 480 overlap minutes: 0.6 + 0.4*(60/480).
	assert.InDelta(t, 0.65, expectedSatisfaction(start, end, teachers, narrow), 1e-9)
}
