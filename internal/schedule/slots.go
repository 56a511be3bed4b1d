package schedule

import (
	"time"

	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/pkg/timeutil"
)

// BuildSlots produces the ordered candidate lesson slots for one day,
// splicing around the configured breaks. A candidate that overlaps a break
// restarts at that break's end, not merely past the overlap.
func BuildSlots(date string, daySchedule dto.DaySchedule, breaks []string, lessonDuration int, log *zap.Logger) ([]Slot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dayStart, err := timeutil.ParseTimeOfDay(date, daySchedule.Start)
	if err != nil {
		return nil, err
	}
	dayEnd, err := timeutil.ParseTimeOfDay(date, daySchedule.End)
	if err != nil {
		return nil, err
	}

	windows := parseBreakWindows(date, breaks, log)
	duration := time.Duration(lessonDuration) * time.Minute

	var slots []Slot
	cursor := dayStart
	for cursor.Before(dayEnd) {
		slotEnd := cursor.Add(duration)
		if slotEnd.After(dayEnd) {
			break
		}
		if bw, ok := overlappingBreak(windows, cursor, slotEnd); ok {
			cursor = bw.end
			continue
		}
		slots = append(slots, Slot{Start: cursor, End: slotEnd, Duration: lessonDuration})
		cursor = slotEnd
	}
	return slots, nil
}

func overlappingBreak(windows []breakWindow, start, end time.Time) (breakWindow, bool) {
	for _, bw := range windows {
		if timeutil.Overlaps(start, end, bw.start, bw.end) {
			return bw, true
		}
	}
	return breakWindow{}, false
}
