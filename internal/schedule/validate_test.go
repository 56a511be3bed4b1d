package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danceclub/timetable-api/internal/dto"
)

func validFixture() ([]dto.Teacher, []dto.Student) {
	teachers := []dto.Teacher{testTeacher("Anna", "Studio 1", 4, "09:00-12:00")}
	students := []dto.Student{testStudent("Milan", 2, 5, "09:00-12:00")}
	return teachers, students
}

func TestValidateConfigurationAcceptsValidInput(t *testing.T) {
	teachers, students := validFixture()
	result := ValidateConfiguration("2025-01-06", "2025-01-07", teachers, students, []string{"11:00-11:30"})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateConfigurationBadDatesShortCircuit(t *testing.T) {
	teachers, students := validFixture()
	result := ValidateConfiguration("06.01.2025", "2025-01-07", teachers, students, nil)
	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Invalid date format. Please use YYYY-MM-DD format.", result.Errors[0])
}

func TestValidateConfigurationInvertedDates(t *testing.T) {
	teachers, students := validFixture()
	result := ValidateConfiguration("2025-01-08", "2025-01-07", teachers, students, nil)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Start date must be before or equal to end date.")
}

func TestValidateConfigurationEmptyRoster(t *testing.T) {
	result := ValidateConfiguration("2025-01-06", "2025-01-06", nil, nil, nil)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "At least one teacher is required.")
	assert.Contains(t, result.Errors, "At least one student is required.")
	assert.Contains(t, result.Warnings, "No overlap found between teacher and student availability. Scheduling may be impossible.")
}

func TestValidateConfigurationTeacherRules(t *testing.T) {
	teachers := []dto.Teacher{
		{Name: " ", Availability: []string{"09:00-12:00"}, MaxLessonsPerDay: 4, Room: "A"},
		{Name: "Anna", Availability: nil, MaxLessonsPerDay: 0, Room: ""},
		{Name: "Boris", Availability: []string{"12:00-09:00", "bad"}, MaxLessonsPerDay: 14, Room: "B"},
	}
	_, students := validFixture()

	result := ValidateConfiguration("2025-01-06", "2025-01-06", teachers, students, nil)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Teacher 1: Name is required.")
	assert.Contains(t, result.Errors, "Teacher Anna: At least one availability window is required.")
	assert.Contains(t, result.Errors, "Teacher Anna: Maximum lessons per day must be at least 1.")
	assert.Contains(t, result.Errors, "Teacher Anna: Room assignment is required.")
	assert.Contains(t, result.Errors, `Teacher Boris: Start time must be before end time in availability "12:00-09:00".`)
	assert.Contains(t, result.Errors, `Teacher Boris: Invalid availability format "bad". Use HH:MM-HH:MM format.`)
	assert.Contains(t, result.Warnings, "Teacher Boris: More than 12 lessons per day may be unsustainable.")
}

func TestValidateConfigurationStudentRules(t *testing.T) {
	teachers, _ := validFixture()
	students := []dto.Student{{
		Name:           "Milan",
		Availability:   []string{"09:00-12:00"},
		DesiredLessons: -1,
		Priority:       11,
		TeacherLessons: map[string]int{"Ghost": 1, "Anna": -1},
	}}

	result := ValidateConfiguration("2025-01-06", "2025-01-06", teachers, students, nil)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Student Milan: Desired lessons cannot be negative.")
	assert.Contains(t, result.Errors, `Student Milan: References non-existent teacher "Ghost".`)
	assert.Contains(t, result.Errors, `Student Milan: Cannot have negative lessons with teacher "Anna".`)
	assert.Contains(t, result.Warnings, "Student Milan: Priority should be between 1-10.")
	assert.Contains(t, result.Warnings, "Student Milan: Teacher-specific lessons (0) don't match desired lessons (-1).")
}

func TestValidateConfigurationBreakRules(t *testing.T) {
	teachers, students := validFixture()
	result := ValidateConfiguration("2025-01-06", "2025-01-06", teachers, students, []string{"", "11:00", "12:00-11:00", "aa-bb"})
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Break 1: Invalid break time.")
	assert.Contains(t, result.Errors, `Break 2: Invalid format "11:00". Use HH:MM-HH:MM format.`)
	assert.Contains(t, result.Errors, `Break 3: Start time must be before end time "12:00-11:00".`)
	assert.Contains(t, result.Errors, `Break 4: Invalid time format "aa-bb".`)
}

func TestValidateConfigurationCapacityWarning(t *testing.T) {
	teachers := []dto.Teacher{testTeacher("Anna", "Studio 1", 1, "09:00-12:00")}
	students := []dto.Student{testStudent("Milan", 10, 5, "09:00-12:00")}

	result := ValidateConfiguration("2025-01-06", "2025-01-06", teachers, students, nil)
	assert.True(t, result.IsValid)
	assert.Contains(t, result.Warnings, "Total student demand (10) exceeds teacher capacity (1).")
	assert.Contains(t, result.Suggestions, "Consider adding more teachers, extending the date range, or reducing student lesson requirements.")
}

func TestValidateConfigurationDisjointAvailabilityWarning(t *testing.T) {
	teachers := []dto.Teacher{testTeacher("Anna", "Studio 1", 4, "08:00-10:00")}
	students := []dto.Student{testStudent("Milan", 2, 5, "14:00-16:00")}

	result := ValidateConfiguration("2025-01-06", "2025-01-06", teachers, students, nil)
	assert.True(t, result.IsValid)
	assert.Contains(t, result.Warnings, "No overlap found between teacher and student availability. Scheduling may be impossible.")
}

func TestValidateConfigurationLongRangeWarning(t *testing.T) {
	teachers, students := validFixture()
	result := ValidateConfiguration("2025-01-01", "2025-02-15", teachers, students, nil)
	assert.True(t, result.IsValid)
	assert.Contains(t, result.Warnings, "Scheduling over more than 30 days may result in poor optimization.")
}

func TestValidateConfigurationIsDeterministic(t *testing.T) {
	teachers := []dto.Teacher{testTeacher("Anna", "Studio 1", 4, "09:00-12:00")}
	students := []dto.Student{{
		Name:           "Milan",
		Availability:   []string{"09:00-12:00"},
		DesiredLessons: 2,
		Priority:       5,
		TeacherLessons: map[string]int{"Zora": 1, "Ghost": 1, "Anna": 1},
	}}

	first := ValidateConfiguration("2025-01-06", "2025-01-06", teachers, students, nil)
	for i := 0; i < 10; i++ {
		again := ValidateConfiguration("2025-01-06", "2025-01-06", teachers, students, nil)
		require.Equal(t, first, again)
	}
}
