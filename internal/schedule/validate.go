package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/pkg/timeutil"
)

// refDate anchors time-of-day parsing for validation, where only the clock
// component matters.
const refDate = "2025-01-01"

// maxComfortableDays is the horizon beyond which the greedy pass tends to
// spread lessons poorly.
const maxComfortableDays = 30

// ValidateConfiguration checks a scheduling request without running it.
// Errors make the configuration unusable, warnings flag likely-poor
// outcomes, suggestions propose fixes for the warnings.
func ValidateConfiguration(startDate, endDate string, teachers []dto.Teacher, students []dto.Student, breaks []string) dto.ValidationResult {
	errors := []string{}
	warnings := []string{}
	suggestions := []string{}

	start, startErr := timeutil.ParseDate(startDate)
	end, endErr := timeutil.ParseDate(endDate)
	if startErr != nil || endErr != nil {
		errors = append(errors, "Invalid date format. Please use YYYY-MM-DD format.")
		return dto.ValidationResult{IsValid: false, Errors: errors, Warnings: warnings, Suggestions: suggestions}
	}

	if start.After(end) {
		errors = append(errors, "Start date must be before or equal to end date.")
	}

	daysDiff := int(end.Sub(start).Hours()/24) + 1
	if daysDiff > maxComfortableDays {
		warnings = append(warnings, "Scheduling over more than 30 days may result in poor optimization.")
	}

	if len(teachers) == 0 {
		errors = append(errors, "At least one teacher is required.")
	}

	for i, teacher := range teachers {
		if strings.TrimSpace(teacher.Name) == "" {
			errors = append(errors, fmt.Sprintf("Teacher %d: Name is required.", i+1))
		}
		if len(teacher.Availability) == 0 {
			errors = append(errors, fmt.Sprintf("Teacher %s: At least one availability window is required.", teacher.Name))
		}
		errors = append(errors, windowErrors("Teacher", teacher.Name, teacher.Availability)...)
		if teacher.MaxLessonsPerDay < 1 {
			errors = append(errors, fmt.Sprintf("Teacher %s: Maximum lessons per day must be at least 1.", teacher.Name))
		}
		if teacher.MaxLessonsPerDay > 12 {
			warnings = append(warnings, fmt.Sprintf("Teacher %s: More than 12 lessons per day may be unsustainable.", teacher.Name))
		}
		if strings.TrimSpace(teacher.Room) == "" {
			errors = append(errors, fmt.Sprintf("Teacher %s: Room assignment is required.", teacher.Name))
		}
	}

	if len(students) == 0 {
		errors = append(errors, "At least one student is required.")
	}

	teacherNames := make(map[string]bool, len(teachers))
	for _, t := range teachers {
		teacherNames[t.Name] = true
	}

	for i, student := range students {
		if strings.TrimSpace(student.Name) == "" {
			errors = append(errors, fmt.Sprintf("Student %d: Name is required.", i+1))
		}
		if len(student.Availability) == 0 {
			errors = append(errors, fmt.Sprintf("Student %s: At least one availability window is required.", student.Name))
		}
		errors = append(errors, windowErrors("Student", student.Name, student.Availability)...)
		if student.DesiredLessons < 0 {
			errors = append(errors, fmt.Sprintf("Student %s: Desired lessons cannot be negative.", student.Name))
		}
		if student.Priority < 1 || student.Priority > 10 {
			warnings = append(warnings, fmt.Sprintf("Student %s: Priority should be between 1-10.", student.Name))
		}

		if len(student.TeacherLessons) > 0 {
			total := 0
			names := make([]string, 0, len(student.TeacherLessons))
			for name, count := range student.TeacherLessons {
				total += count
				names = append(names, name)
			}
			if total != student.DesiredLessons {
				warnings = append(warnings, fmt.Sprintf("Student %s: Teacher-specific lessons (%d) don't match desired lessons (%d).", student.Name, total, student.DesiredLessons))
			}
			sort.Strings(names)
			for _, name := range names {
				if !teacherNames[name] {
					errors = append(errors, fmt.Sprintf("Student %s: References non-existent teacher %q.", student.Name, name))
				}
				if student.TeacherLessons[name] < 0 {
					errors = append(errors, fmt.Sprintf("Student %s: Cannot have negative lessons with teacher %q.", student.Name, name))
				}
			}
		}
	}

	for i, breakTime := range breaks {
		if breakTime == "" {
			errors = append(errors, fmt.Sprintf("Break %d: Invalid break time.", i+1))
			continue
		}
		parts := strings.Split(breakTime, "-")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			errors = append(errors, fmt.Sprintf("Break %d: Invalid format %q. Use HH:MM-HH:MM format.", i+1, breakTime))
			continue
		}
		bStart, sErr := timeutil.ParseTimeOfDay(refDate, strings.TrimSpace(parts[0]))
		bEnd, eErr := timeutil.ParseTimeOfDay(refDate, strings.TrimSpace(parts[1]))
		if sErr != nil || eErr != nil {
			errors = append(errors, fmt.Sprintf("Break %d: Invalid time format %q.", i+1, breakTime))
		} else if !bStart.Before(bEnd) {
			errors = append(errors, fmt.Sprintf("Break %d: Start time must be before end time %q.", i+1, breakTime))
		}
	}

	totalCapacity := 0
	for _, t := range teachers {
		totalCapacity += t.MaxLessonsPerDay * daysDiff
	}
	totalDemand := 0
	for _, s := range students {
		totalDemand += s.DesiredLessons
	}
	if totalDemand > totalCapacity {
		warnings = append(warnings, fmt.Sprintf("Total student demand (%d) exceeds teacher capacity (%d).", totalDemand, totalCapacity))
		suggestions = append(suggestions, "Consider adding more teachers, extending the date range, or reducing student lesson requirements.")
	}

	if !anyAvailabilityOverlap(teachers, students) {
		warnings = append(warnings, "No overlap found between teacher and student availability. Scheduling may be impossible.")
		suggestions = append(suggestions, "Check that at least some teachers and students have overlapping availability windows.")
	}

	return dto.ValidationResult{
		IsValid:     len(errors) == 0,
		Errors:      errors,
		Warnings:    warnings,
		Suggestions: suggestions,
	}
}

func windowErrors(role, name string, windows []string) []string {
	var errs []string
	for _, avail := range windows {
		parts := strings.SplitN(avail, "-", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			errs = append(errs, fmt.Sprintf("%s %s: Invalid availability format %q. Use HH:MM-HH:MM format.", role, name, avail))
			continue
		}
		start, sErr := timeutil.ParseTimeOfDay(refDate, parts[0])
		end, eErr := timeutil.ParseTimeOfDay(refDate, parts[1])
		if sErr != nil || eErr != nil {
			errs = append(errs, fmt.Sprintf("%s %s: Invalid time format in availability %q.", role, name, avail))
		} else if !start.Before(end) {
			errs = append(errs, fmt.Sprintf("%s %s: Start time must be before end time in availability %q.", role, name, avail))
		}
	}
	return errs
}

// anyAvailabilityOverlap reports whether at least one teacher window and
// one student window intersect on the clock. Malformed windows are ignored
// here since they were already reported above.
func anyAvailabilityOverlap(teachers []dto.Teacher, students []dto.Student) bool {
	for _, t := range teachers {
		for _, s := range students {
			for _, tAvail := range t.Availability {
				tStart, tEnd, err := timeutil.ParseRange(tAvail, refDate)
				if err != nil {
					continue
				}
				for _, sAvail := range s.Availability {
					sStart, sEnd, err := timeutil.ParseRange(sAvail, refDate)
					if err != nil {
						continue
					}
					if timeutil.Overlaps(tStart, tEnd, sStart, sEnd) {
						return true
					}
				}
			}
		}
	}
	return false
}
