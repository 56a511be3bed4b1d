package schedule

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/pkg/timeutil"
)

// GenerateRange schedules every day in [startDate, endDate], threading
// remaining demand forward so a student whose lessons were covered early
// stops competing for slots on later days. Day-level warnings are
// suppressed; the unmet summary over the whole range is attached to the
// last day.
func GenerateRange(startDate, endDate string, teachers []dto.Teacher, students []dto.Student, breaks []string, daySchedules map[string]dto.DaySchedule, cfg dto.TimetableConfig, log *zap.Logger) dto.MultiDayResult {
	if log == nil {
		log = zap.NewNop()
	}

	validation := ValidateConfiguration(startDate, endDate, teachers, students, breaks)
	if !validation.IsValid {
		unmet := make([]string, 0, len(students))
		for _, s := range students {
			unmet = append(unmet, s.Name)
		}
		return dto.MultiDayResult{
			DateRange: dto.DateRange{Start: startDate, End: endDate},
			Days:      []dto.DayTimetable{},
			Error:     "Configuration errors: " + strings.Join(validation.Errors, ", "),
			Summary: dto.Summary{
				TotalLessons:      0,
				StudentsSatisfied: 0,
				StudentsUnmet:     unmet,
			},
		}
	}

	start, _ := timeutil.ParseDate(startDate)
	end, _ := timeutil.ParseDate(endDate)
	dates := timeutil.DatesBetween(start, end)

	totals := make(map[string]progress, len(students))
	perTeacher := make(map[string]map[string]int, len(students))
	for _, s := range students {
		totals[s.Name] = progress{scheduled: 0, desired: s.DesiredLessons}
		perTeacher[s.Name] = make(map[string]int, len(teachers))
		for _, t := range teachers {
			perTeacher[s.Name][t.Name] = 0
		}
	}
	studentState := NewStudentStates(students)

	days := make([]dto.DayTimetable, 0, len(dates))
	for _, date := range dates {
		dayStudents := remainingDemand(date, students, totals, perTeacher)

		log.Debug("scheduling day",
			zap.String("date", date),
			zap.Int("activeStudents", len(dayStudents)),
		)

		dayResult := generateDay(date, teachers, dayStudents, breaks, scheduleFor(date, daySchedules), studentState, cfg, log)

		for _, l := range dayResult.Lessons {
			if l.Type != dto.EntryLesson || l.Student == "" {
				continue
			}
			p := totals[l.Student]
			p.scheduled++
			totals[l.Student] = p
			if l.Teacher != "" {
				perTeacher[l.Student][l.Teacher]++
			}
		}

		// Fatigue state does not carry overnight.
		for _, state := range studentState {
			state.Consecutive = 0
			state.LastLessonTime = time.Time{}
		}

		dayResult.Warning = ""
		days = append(days, dayResult)
	}

	unmetNames, warning := evaluateUnmet(students, totals, perTeacher)

	if len(days) > 0 {
		days[len(days)-1].Warning = warning
	}

	totalLessons := 0
	for _, day := range days {
		for _, l := range day.Lessons {
			if l.Type == dto.EntryLesson {
				totalLessons++
			}
		}
	}

	var alternatives []dto.AlternativeDateSuggestion
	if len(unmetNames) > 0 {
		alternatives = SuggestAlternativeDates(startDate, endDate, teachers, students, breaks, cfg, log)
	}

	return dto.MultiDayResult{
		DateRange: dto.DateRange{Start: startDate, End: endDate},
		Days:      days,
		Summary: dto.Summary{
			TotalLessons:      totalLessons,
			StudentsSatisfied: len(students) - len(unmetNames),
			StudentsUnmet:     unmetNames,
		},
		AlternativeDateSuggestions: alternatives,
		ValidationWarnings:         validation.Warnings,
		ValidationSuggestions:      validation.Suggestions,
	}
}

// remainingDemand derives the day's student list: only students available
// on the date with lessons still owed, their desired count reduced to what
// is left and their teacher-specific requirements reduced likewise, with
// exhausted entries dropped.
func remainingDemand(date string, students []dto.Student, totals map[string]progress, perTeacher map[string]map[string]int) []dto.Student {
	var out []dto.Student
	for _, s := range students {
		if !availableOnDate(s.UnavailableDates, date) {
			continue
		}
		p := totals[s.Name]
		remaining := p.desired - p.scheduled
		if remaining <= 0 {
			continue
		}

		day := s
		day.DesiredLessons = remaining
		if s.TeacherLessons != nil {
			day.TeacherLessons = make(map[string]int, len(s.TeacherLessons))
			for teacherName, required := range s.TeacherLessons {
				left := required - perTeacher[s.Name][teacherName]
				if left > 0 {
					day.TeacherLessons[teacherName] = left
				}
			}
		}
		out = append(out, day)
	}
	return out
}
