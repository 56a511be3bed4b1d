package schedule

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/pkg/timeutil"
)

const (
	// suggestionLookahead bounds how many shifted or extended ranges are
	// probed; suggestionHorizon caps how far into the future a suggested
	// range may end.
	suggestionLookahead = 14
	suggestionHorizon   = 90 * 24 * time.Hour
	satisfactionCutoff  = 0.7
	fullOverlapMinutes  = 480
	capacityWeight      = 0.6
	overlapWeight       = 0.4
)

// now is swapped out in tests.
var now = time.Now

// SuggestAlternativeDates probes shifted, extended and weekend variants of
// the original range and keeps those whose estimated satisfaction clears
// the cutoff, best first. The estimate is a cheap heuristic over capacity
// and availability overlap, not a full scheduling run.
func SuggestAlternativeDates(startDate, endDate string, teachers []dto.Teacher, students []dto.Student, breaks []string, cfg dto.TimetableConfig, log *zap.Logger) []dto.AlternativeDateSuggestion {
	if log == nil {
		log = zap.NewNop()
	}

	start, startErr := timeutil.ParseDate(startDate)
	end, endErr := timeutil.ParseDate(endDate)
	if startErr != nil || endErr != nil {
		return nil
	}

	originalDays := int(end.Sub(start).Hours()/24) + 1
	horizon := now().UTC().Add(suggestionHorizon)

	var suggestions []dto.AlternativeDateSuggestion
	consider := func(candidateStart, candidateEnd time.Time, reason string) {
		if candidateEnd.After(horizon) {
			return
		}
		satisfaction := expectedSatisfaction(candidateStart, candidateEnd, teachers, students)
		if satisfaction <= satisfactionCutoff {
			return
		}
		suggestions = append(suggestions, dto.AlternativeDateSuggestion{
			Date:                 fmt.Sprintf("%s to %s", candidateStart.Format(timeutil.DateLayout), candidateEnd.Format(timeutil.DateLayout)),
			Reason:               reason,
			ExpectedSatisfaction: satisfaction,
		})
	}

	for offset := 1; offset <= suggestionLookahead; offset++ {
		laterStart := start.AddDate(0, 0, offset)
		consider(laterStart, laterStart.AddDate(0, 0, originalDays-1), fmt.Sprintf("Starting %s later", plural(offset, "day")))
		consider(start, end.AddDate(0, 0, offset), fmt.Sprintf("Extending by %s", plural(offset, "day")))
	}

	if !isWeekend(start) || !isWeekend(end) {
		weekendStart := start
		for !isWeekend(weekendStart) {
			weekendStart = weekendStart.AddDate(0, 0, 1)
		}
		consider(weekendStart, weekendStart.AddDate(0, 0, originalDays-1), "Weekend alternative")
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].ExpectedSatisfaction > suggestions[j].ExpectedSatisfaction
	})

	log.Debug("alternative dates suggested", zap.Int("count", len(suggestions)))
	return suggestions
}

// expectedSatisfaction blends a capacity ratio with an availability
// overlap ratio. 480 minutes of daily overlap per teacher/student pair
// counts as full overlap.
func expectedSatisfaction(start, end time.Time, teachers []dto.Teacher, students []dto.Student) float64 {
	days := int(end.Sub(start).Hours()/24) + 1

	totalCapacity := 0
	for _, t := range teachers {
		totalCapacity += t.MaxLessonsPerDay * days
	}
	totalDemand := 0
	for _, s := range students {
		totalDemand += s.DesiredLessons
	}

	capacityRatio := 1.0
	if totalDemand > 0 {
		capacityRatio = float64(totalCapacity) / float64(totalDemand)
		if capacityRatio > 1 {
			capacityRatio = 1
		}
	}

	overlapMinutes := 0.0
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
					if !timeutil.Overlaps(tStart, tEnd, sStart, sEnd) {
						continue
					}
					oStart := tStart
					if sStart.After(oStart) {
						oStart = sStart
					}
					oEnd := tEnd
					if sEnd.Before(oEnd) {
						oEnd = sEnd
					}
					overlapMinutes += oEnd.Sub(oStart).Minutes()
				}
			}
		}
	}

	overlapRatio := 0.0
	if denom := float64(len(teachers) * len(students) * fullOverlapMinutes); denom > 0 {
		overlapRatio = overlapMinutes / denom
		if overlapRatio > 1 {
			overlapRatio = 1
		}
	}

	return capacityRatio*capacityWeight + overlapRatio*overlapWeight
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
