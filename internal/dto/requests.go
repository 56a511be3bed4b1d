package dto

// ValidateRequest checks a proposed configuration without scheduling.
type ValidateRequest struct {
	StartDate string    `json:"startDate" validate:"required"`
	EndDate   string    `json:"endDate" validate:"required"`
	Teachers  []Teacher `json:"teachers"`
	Students  []Student `json:"students"`
	Breaks    []string  `json:"breaks"`
}

// GenerateRequest schedules a single calendar day.
type GenerateRequest struct {
	Date        string           `json:"date" validate:"required"`
	Teachers    []Teacher        `json:"teachers"`
	Students    []Student        `json:"students"`
	Breaks      []string         `json:"breaks"`
	DaySchedule *DaySchedule     `json:"daySchedule,omitempty" validate:"omitempty"`
	Config      *TimetableConfig `json:"config,omitempty" validate:"omitempty"`
}

// GenerateRangeRequest schedules an inclusive date range.
type GenerateRangeRequest struct {
	StartDate    string                 `json:"startDate" validate:"required"`
	EndDate      string                 `json:"endDate" validate:"required"`
	Teachers     []Teacher              `json:"teachers"`
	Students     []Student              `json:"students"`
	Breaks       []string               `json:"breaks"`
	DaySchedules map[string]DaySchedule `json:"daySchedules,omitempty"`
	Config       *TimetableConfig       `json:"config,omitempty" validate:"omitempty"`
}

// UpdateBreaksRequest re-runs scheduling for lessons colliding with a new
// break set. Either ResultID (a stored result) or Existing must be given.
type UpdateBreaksRequest struct {
	ResultID     string                 `json:"resultId,omitempty"`
	Existing     *MultiDayResult        `json:"existing,omitempty"`
	NewBreaks    []string               `json:"newBreaks" validate:"required"`
	Teachers     []Teacher              `json:"teachers"`
	Students     []Student              `json:"students"`
	DaySchedules map[string]DaySchedule `json:"daySchedules,omitempty"`
	Config       *TimetableConfig       `json:"config,omitempty" validate:"omitempty"`
}

// SuggestDatesRequest asks the advisor for better-fitting date ranges.
type SuggestDatesRequest struct {
	StartDate string    `json:"startDate" validate:"required"`
	EndDate   string    `json:"endDate" validate:"required"`
	Teachers  []Teacher `json:"teachers"`
	Students  []Student `json:"students"`
	Breaks    []string  `json:"breaks"`
}
