package dto

import "time"

// Entry kinds for timetable records.
const (
	EntryLesson = "lesson"
	EntryBreak  = "break"
	EntryUnused = "unused"
)

// Break classification.
const (
	BreakConsecutive = "consecutive"
	BreakDefault     = "default"

	BreakForTeacher = "teacher"
	BreakForStudent = "student"
)

// Teacher describes one instructor for a scheduling run. Name is the unique
// key; Room is bound 1:1 to the teacher for the whole run.
type Teacher struct {
	Name             string   `json:"name"`
	Availability     []string `json:"availability"`
	MaxLessonsPerDay int      `json:"maxLessonsPerDay"`
	Room             string   `json:"room"`
	UnavailableDates []string `json:"unavailableDates,omitempty"`
}

// Student describes one learner's demand for a scheduling run.
// PreferredTimes and WeeklyLessons are reserved advisory fields; the engine
// does not consult them.
type Student struct {
	Name             string         `json:"name"`
	Availability     []string       `json:"availability"`
	DesiredLessons   int            `json:"desiredLessons"`
	Priority         int            `json:"priority"`
	TeacherLessons   map[string]int `json:"teacherLessons,omitempty"`
	UnavailableDates []string       `json:"unavailableDates,omitempty"`
	PreferredTimes   []string       `json:"preferredTimes,omitempty"`
	WeeklyLessons    int            `json:"weeklyLessons,omitempty"`
}

// Lesson is one timetable record: a taught lesson, a break, or an unused
// slot. For breaks the participant fields are empty unless the break is
// attributed via BreakFor/BreakForName.
type Lesson struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Teacher      string    `json:"teacher,omitempty"`
	Student      string    `json:"student,omitempty"`
	Room         string    `json:"room,omitempty"`
	Type         string    `json:"type"`
	Duration     int       `json:"duration"`
	BreakType    string    `json:"breakType,omitempty"`
	BreakFor     string    `json:"breakFor,omitempty"`
	BreakForName string    `json:"breakForName,omitempty"`
}

// DaySchedule bounds a single day's operating window.
type DaySchedule struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// TimetableConfig tunes slot size and fatigue thresholds.
type TimetableConfig struct {
	LessonDuration    int `json:"lessonDuration" validate:"required,min=1"`
	StudentBreakAfter int `json:"studentBreakAfter" validate:"required,min=1"`
	TeacherBreakAfter int `json:"teacherBreakAfter" validate:"required,min=1"`
}

// ValidationResult accumulates structural findings for a proposed run.
// Errors block execution; warnings and suggestions are advisory.
type ValidationResult struct {
	IsValid     bool     `json:"isValid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// DayTimetable is the output of a single-day scheduling run.
type DayTimetable struct {
	Date    string   `json:"date"`
	Lessons []Lesson `json:"lessons"`
	Error   string   `json:"error,omitempty"`
	Warning string   `json:"warning,omitempty"`
}

// DateRange is an inclusive ISO date span.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary aggregates a multi-day run.
type Summary struct {
	TotalLessons      int      `json:"totalLessons"`
	StudentsSatisfied int      `json:"studentsSatisfied"`
	StudentsUnmet     []string `json:"studentsUnmet"`
}

// AlternativeDateSuggestion proposes a shifted or extended range with an
// estimated satisfaction in [0,1].
type AlternativeDateSuggestion struct {
	Date                 string  `json:"date"`
	Reason               string  `json:"reason"`
	ExpectedSatisfaction float64 `json:"expectedSatisfaction"`
}

// MultiDayResult is the output of a multi-day scheduling run. ResultID keys
// the stored copy held by the service for later incremental updates.
type MultiDayResult struct {
	ResultID                   string                      `json:"resultId,omitempty"`
	DateRange                  DateRange                   `json:"dateRange"`
	Days                       []DayTimetable              `json:"days"`
	Summary                    Summary                     `json:"summary"`
	AlternativeDateSuggestions []AlternativeDateSuggestion `json:"alternativeDateSuggestions,omitempty"`
	ValidationWarnings         []string                    `json:"validationWarnings,omitempty"`
	ValidationSuggestions      []string                    `json:"validationSuggestions,omitempty"`
	Error                      string                      `json:"error,omitempty"`
}
