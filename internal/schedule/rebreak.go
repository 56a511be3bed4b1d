package schedule

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/pkg/timeutil"
)

// UpdateWithNewBreaks revises an already-generated timetable against a
// replacement break list. Lessons that do not collide with any new break
// are kept in place; colliding lessons are re-run through the engine on
// their original day, constrained to the same teachers. Break entries are
// rebuilt from the new list, so the old ones are dropped from every day.
func UpdateWithNewBreaks(existing dto.MultiDayResult, newBreaks []string, teachers []dto.Teacher, students []dto.Student, daySchedules map[string]dto.DaySchedule, cfg dto.TimetableConfig, log *zap.Logger) dto.MultiDayResult {
	if log == nil {
		log = zap.NewNop()
	}

	updatedDays := make([]dto.DayTimetable, 0, len(existing.Days))
	for _, day := range existing.Days {
		updatedDays = append(updatedDays, rescheduleDay(day, newBreaks, teachers, students, scheduleFor(day.Date, daySchedules), cfg, log))
	}

	totalLessons := 0
	scheduled := make(map[string]int, len(students))
	for _, day := range updatedDays {
		for _, l := range day.Lessons {
			if l.Type == dto.EntryLesson {
				totalLessons++
				if l.Student != "" {
					scheduled[l.Student]++
				}
			}
		}
	}

	var unmet []string
	for _, s := range students {
		if scheduled[s.Name] < s.DesiredLessons {
			unmet = append(unmet, s.Name)
		}
	}

	out := existing
	out.Days = updatedDays
	out.Summary = dto.Summary{
		TotalLessons:      totalLessons,
		StudentsSatisfied: len(students) - len(unmet),
		StudentsUnmet:     unmet,
	}
	return out
}

func rescheduleDay(day dto.DayTimetable, newBreaks []string, teachers []dto.Teacher, students []dto.Student, daySchedule dto.DaySchedule, cfg dto.TimetableConfig, log *zap.Logger) dto.DayTimetable {
	windows := parseBreakWindows(day.Date, newBreaks, log)

	var valid, conflicting []dto.Lesson
	for _, l := range day.Lessons {
		if l.Type != dto.EntryLesson {
			continue
		}
		if overlapsAny(l, windows) {
			conflicting = append(conflicting, l)
		} else {
			valid = append(valid, l)
		}
	}

	if len(conflicting) == 0 {
		day.Lessons = valid
		return day
	}

	log.Info("rescheduling break conflicts",
		zap.String("date", day.Date),
		zap.Int("conflicts", len(conflicting)),
	)

	displaced := displacedStudents(conflicting, students)
	if len(displaced) == 0 {
		day.Lessons = valid
		return day
	}

	rerun := generateDay(day.Date, teachers, displaced, newBreaks, daySchedule, NewStudentStates(displaced), cfg, log)

	merged := make([]dto.Lesson, 0, len(valid)+len(rerun.Lessons))
	merged = append(merged, valid...)
	rescheduled := 0
	for _, l := range rerun.Lessons {
		if l.Type == dto.EntryLesson {
			merged = append(merged, l)
			rescheduled++
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start.Before(merged[j].Start)
	})

	day.Lessons = merged
	day.Warning = rerun.Warning
	if day.Warning == "" && len(conflicting) > rescheduled {
		day.Warning = fmt.Sprintf("%d lessons could not be rescheduled due to break conflicts", len(conflicting)-rescheduled)
	}
	return day
}

func overlapsAny(l dto.Lesson, windows []breakWindow) bool {
	for _, bw := range windows {
		if timeutil.Overlaps(l.Start, l.End, bw.start, bw.end) {
			return true
		}
	}
	return false
}

// displacedStudents rebuilds a student list whose demand is exactly the
// displaced lessons: one desired lesson per conflict, pinned to the
// original teacher. Everything else (availability, priority, blocked
// dates) carries over from the configured student.
func displacedStudents(conflicting []dto.Lesson, students []dto.Student) []dto.Student {
	byName := make(map[string]int)
	var out []dto.Student
	for _, l := range conflicting {
		if l.Student == "" || l.Teacher == "" {
			continue
		}
		idx, ok := byName[l.Student]
		if !ok {
			var original *dto.Student
			for i := range students {
				if students[i].Name == l.Student {
					original = &students[i]
					break
				}
			}
			if original == nil {
				continue
			}
			s := *original
			s.DesiredLessons = 0
			s.TeacherLessons = make(map[string]int)
			out = append(out, s)
			idx = len(out) - 1
			byName[l.Student] = idx
		}
		out[idx].DesiredLessons++
		out[idx].TeacherLessons[l.Teacher]++
	}
	return out
}
