// Package schedule implements the timetable generation engine: slot
// building, the single-day greedy assignment algorithm, the multi-day
// orchestrator, incremental re-scheduling after break changes, and the
// alternative-date advisor. Everything here is pure data-in/data-out and
// deterministic for a given input order.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/pkg/timeutil"
)

// DefaultDaySchedule bounds a day when no override is supplied.
var DefaultDaySchedule = dto.DaySchedule{Start: "08:00", End: "18:00"}

// DefaultConfig returns the engine defaults.
func DefaultConfig() dto.TimetableConfig {
	return dto.TimetableConfig{
		LessonDuration:    45,
		StudentBreakAfter: 4,
		TeacherBreakAfter: 4,
	}
}

// Slot is a fixed-duration candidate lesson interval.
type Slot struct {
	Start    time.Time
	End      time.Time
	Duration int
}

// StudentState carries fatigue tracking for one student across day
// boundaries inside a multi-day run. Consecutive and LastLessonTime are
// reset at each day boundary; LastTeacher and LastLessonTime are recorded
// on every assignment but not consulted by any gating rule.
type StudentState struct {
	Consecutive    int
	LastTeacher    string
	LastLessonTime time.Time
}

// NewStudentStates builds fresh per-student carry-over state.
func NewStudentStates(students []dto.Student) map[string]*StudentState {
	states := make(map[string]*StudentState, len(students))
	for _, s := range students {
		states[s.Name] = &StudentState{}
	}
	return states
}

type breakWindow struct {
	start time.Time
	end   time.Time
}

// parseBreakWindows anchors the valid break strings to the given date.
// Malformed entries are skipped with a warning; a single bad break must not
// block scheduling.
func parseBreakWindows(date string, breaks []string, log *zap.Logger) []breakWindow {
	windows := make([]breakWindow, 0, len(breaks))
	for _, raw := range breaks {
		start, end, err := timeutil.ParseRange(raw, date)
		if err != nil {
			log.Warn("skipping invalid break", zap.String("break", raw), zap.Error(err))
			continue
		}
		windows = append(windows, breakWindow{start: start, end: end})
	}
	return windows
}

func availableOnDate(unavailableDates []string, date string) bool {
	if len(unavailableDates) == 0 {
		return true
	}
	normalized := strings.SplitN(date, "T", 2)[0]
	for _, d := range unavailableDates {
		if d == normalized {
			return false
		}
	}
	return true
}

// coversSlot reports whether any availability window fully contains the
// slot. Windows that fail to parse never match.
func coversSlot(availability []string, date string, slot Slot) bool {
	for _, raw := range availability {
		start, end, err := timeutil.ParseRange(raw, date)
		if err != nil {
			continue
		}
		if !slot.Start.Before(start) && !slot.End.After(end) {
			return true
		}
	}
	return false
}

func scheduleFor(date string, overrides map[string]dto.DaySchedule) dto.DaySchedule {
	if s, ok := overrides[date]; ok {
		return s
	}
	return DefaultDaySchedule
}

type progress struct {
	scheduled int
	desired   int
}

// evaluateUnmet lists the students whose total or per-teacher demand is not
// covered by the given progress and renders the shared warning string.
// Teacher details are ordered by name so identical inputs produce identical
// output.
func evaluateUnmet(students []dto.Student, totals map[string]progress, perTeacher map[string]map[string]int) ([]string, string) {
	var names []string
	var details []string
	for _, s := range students {
		p := totals[s.Name]
		unmet := p.scheduled < p.desired
		if !unmet {
			for teacherName, required := range s.TeacherLessons {
				if perTeacher[s.Name][teacherName] < required {
					unmet = true
					break
				}
			}
		}
		if !unmet {
			continue
		}
		names = append(names, s.Name)
		detail := fmt.Sprintf("%s (%d/%d", s.Name, p.scheduled, p.desired)
		if len(s.TeacherLessons) > 0 {
			teacherNames := make([]string, 0, len(s.TeacherLessons))
			for name := range s.TeacherLessons {
				teacherNames = append(teacherNames, name)
			}
			sort.Strings(teacherNames)
			for _, name := range teacherNames {
				detail += fmt.Sprintf(", %s: %d/%d", name, perTeacher[s.Name][name], s.TeacherLessons[name])
			}
		}
		detail += ")"
		details = append(details, detail)
	}
	if len(names) == 0 {
		return nil, ""
	}
	return names, "Could not schedule all lessons. Unmet: " + strings.Join(details, ", ")
}
