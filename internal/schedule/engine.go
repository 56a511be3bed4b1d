package schedule

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danceclub/timetable-api/internal/dto"
	"github.com/danceclub/timetable-api/pkg/timeutil"
)

// The run-detection thresholds are intentionally asymmetric and must stay
// separate per call site: the pre-assignment gate treats gaps up to 5
// minutes as back-to-back, while the retrospective scan after an
// assignment tolerates 15-minute gaps. The "near a default break" windows
// differ the same way between gating (90 minutes) and break insertion
// (15 minutes for students, 5 for teachers).
const (
	transitionGap    = 5 * time.Minute
	retrospectiveGap = 15 * time.Minute

	gateBreakWindow     = 90 * time.Minute
	studentWaitWindow   = 15 * time.Minute
	studentInsertWindow = 15 * time.Minute
	teacherInsertWindow = 5 * time.Minute
)

// Generate runs the single-day assignment engine with fresh fatigue state.
// Configuration errors refuse the run and are reported on the result; unmet
// demand is a warning on a best-effort partial schedule, never an error.
func Generate(date string, teachers []dto.Teacher, students []dto.Student, breaks []string, daySchedule dto.DaySchedule, cfg dto.TimetableConfig, log *zap.Logger) dto.DayTimetable {
	validation := ValidateConfiguration(date, date, teachers, students, breaks)
	if !validation.IsValid {
		return dto.DayTimetable{
			Date:    date,
			Lessons: []dto.Lesson{},
			Error:   "Configuration errors: " + strings.Join(validation.Errors, ", "),
		}
	}
	return generateDay(date, teachers, students, breaks, daySchedule, NewStudentStates(students), cfg, log)
}

// generateDay is the core greedy pass shared by the standalone entry point,
// the multi-day orchestrator, and the break rescheduler. studentState is
// externally owned so the orchestrator can thread it across days.
func generateDay(date string, teachers []dto.Teacher, students []dto.Student, breaks []string, daySchedule dto.DaySchedule, studentState map[string]*StudentState, cfg dto.TimetableConfig, log *zap.Logger) dto.DayTimetable {
	if log == nil {
		log = zap.NewNop()
	}

	st := newDayState(date, teachers, students, breaks, cfg, log)

	slots, err := BuildSlots(date, daySchedule, breaks, cfg.LessonDuration, log)
	if err != nil {
		return dto.DayTimetable{Date: date, Lessons: []dto.Lesson{}, Error: err.Error()}
	}

	ordered := st.prioritize(students)

	for _, slot := range slots {
		st.tickCooldowns()

		for ti := range teachers {
			teacher := &teachers[ti]
			if st.cooldown[teacher.Name] > 0 {
				continue
			}
			if !coversSlot(teacher.Availability, date, slot) {
				continue
			}
			if st.teacherLessonCount(teacher.Name) >= teacher.MaxLessonsPerDay {
				continue
			}
			if !st.teacherMayTeach(teacher, slot) {
				continue
			}

			candidates := st.candidatesFor(teacher, ordered)
			st.sortByRemaining(candidates)

			student := st.pickStudent(candidates, slot)
			if student == nil {
				continue
			}

			st.assign(teacher, student, slot, studentState)
			st.insertStudentFatigueBreak(student)
			st.insertTeacherFatigueBreak(teacher)
		}
	}

	st.appendDefaultBreaks()
	lessons := st.finalize()

	totals := make(map[string]progress, len(students))
	for _, s := range students {
		totals[s.Name] = progress{scheduled: st.studentLessons[s.Name], desired: s.DesiredLessons}
	}
	_, warning := evaluateUnmet(students, totals, st.studentTeacher)

	if warning != "" {
		log.Debug("day scheduled with unmet demand",
			zap.String("date", date),
			zap.Int("slots", len(slots)),
			zap.Int("lessons", st.lessonTotal()),
		)
	}

	return dto.DayTimetable{Date: date, Lessons: lessons, Warning: warning}
}

type dayState struct {
	date string
	cfg  dto.TimetableConfig
	log  *zap.Logger

	breaks    []breakWindow
	timetable []dto.Lesson

	studentLessons map[string]int
	studentTeacher map[string]map[string]int
	cooldown       map[string]int
	teacherOrder   []string
}

func newDayState(date string, teachers []dto.Teacher, students []dto.Student, breaks []string, cfg dto.TimetableConfig, log *zap.Logger) *dayState {
	st := &dayState{
		date:           date,
		cfg:            cfg,
		log:            log,
		breaks:         parseBreakWindows(date, breaks, log),
		studentLessons: make(map[string]int, len(students)),
		studentTeacher: make(map[string]map[string]int, len(students)),
		cooldown:       make(map[string]int, len(teachers)),
		teacherOrder:   make([]string, 0, len(teachers)),
	}
	for _, s := range students {
		st.studentLessons[s.Name] = 0
		st.studentTeacher[s.Name] = make(map[string]int, len(teachers))
		for _, t := range teachers {
			st.studentTeacher[s.Name][t.Name] = 0
		}
	}
	for _, t := range teachers {
		st.cooldown[t.Name] = 0
		st.teacherOrder = append(st.teacherOrder, t.Name)
	}
	return st
}

func (st *dayState) tickCooldowns() {
	for _, name := range st.teacherOrder {
		if st.cooldown[name] > 0 {
			st.cooldown[name]--
		}
	}
}

// prioritize establishes the deterministic total order students are drawn
// from: available-on-date first, then priority, remaining total demand and
// unmet teacher-specific need, all descending. Ties keep input order.
func (st *dayState) prioritize(students []dto.Student) []dto.Student {
	ordered := make([]dto.Student, len(students))
	copy(ordered, students)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		aAvail := availableOnDate(a.UnavailableDates, st.date)
		bAvail := availableOnDate(b.UnavailableDates, st.date)
		if aAvail != bAvail {
			return aAvail
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		aRemaining := a.DesiredLessons - st.studentLessons[a.Name]
		bRemaining := b.DesiredLessons - st.studentLessons[b.Name]
		if aRemaining != bRemaining {
			return aRemaining > bRemaining
		}
		return st.teacherNeed(a) > st.teacherNeed(b)
	})
	return ordered
}

// teacherNeed sums the still-unmet teacher-specific requirement.
func (st *dayState) teacherNeed(s dto.Student) int {
	need := 0
	for teacherName, required := range s.TeacherLessons {
		if remaining := required - st.studentTeacher[s.Name][teacherName]; remaining > 0 {
			need += remaining
		}
	}
	return need
}

// candidatesFor narrows the prioritized students down to those this teacher
// may still serve. A student with declared teacher requirements is barred
// from every teacher outside that declaration.
func (st *dayState) candidatesFor(teacher *dto.Teacher, ordered []dto.Student) []dto.Student {
	var out []dto.Student
	for _, s := range ordered {
		if !availableOnDate(s.UnavailableDates, st.date) {
			continue
		}
		if st.studentLessons[s.Name] >= s.DesiredLessons {
			continue
		}
		if len(s.TeacherLessons) > 0 {
			if st.studentTeacher[s.Name][teacher.Name] >= s.TeacherLessons[teacher.Name] {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func (st *dayState) sortByRemaining(candidates []dto.Student) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a := candidates[i].DesiredLessons - st.studentLessons[candidates[i].Name]
		b := candidates[j].DesiredLessons - st.studentLessons[candidates[j].Name]
		return a > b
	})
}

func (st *dayState) pickStudent(candidates []dto.Student, slot Slot) *dto.Student {
	for i := range candidates {
		s := &candidates[i]
		if st.studentLessons[s.Name] >= s.DesiredLessons {
			continue
		}
		if !coversSlot(s.Availability, st.date, slot) {
			continue
		}
		if st.studentOverlap(s.Name, slot) {
			continue
		}
		if st.studentBlockedByFatigueBreak(s.Name, slot) {
			continue
		}
		if !st.studentMayLearn(s, slot) {
			continue
		}
		return s
	}
	return nil
}

func (st *dayState) studentOverlap(name string, slot Slot) bool {
	for _, l := range st.timetable {
		if l.Student == name && timeutil.Overlaps(slot.Start, slot.End, l.Start, l.End) {
			return true
		}
	}
	return false
}

func (st *dayState) studentBlockedByFatigueBreak(name string, slot Slot) bool {
	for _, l := range st.timetable {
		if l.Type == dto.EntryBreak &&
			l.BreakType == dto.BreakConsecutive &&
			l.BreakFor == dto.BreakForStudent &&
			l.BreakForName == name &&
			timeutil.Overlaps(slot.Start, slot.End, l.Start, l.End) {
			return true
		}
	}
	return false
}

// teacherMayTeach gates a teacher on the consecutive-run rule. The run is
// recomputed from the day's timetable for every candidate slot.
func (st *dayState) teacherMayTeach(teacher *dto.Teacher, slot Slot) bool {
	lessons := st.lessonsOfTeacher(teacher.Name)
	if len(lessons) == 0 {
		return true
	}

	run := st.runLength(lessons, transitionGap, true)

	// A configured break sitting between the run's last lesson and this
	// slot resets the run once the slot clears the break's end.
	last := lessons[len(lessons)-1]
	for _, bw := range st.breaks {
		if bw.start.After(last.End) && !bw.start.After(slot.Start) {
			if !slot.Start.Before(bw.end) {
				run = 0
			}
			break
		}
	}

	if run < st.cfg.TeacherBreakAfter {
		return true
	}

	if bw, ok := st.breakNear(last.End, gateBreakWindow); ok {
		if slot.Start.Before(bw.end) {
			st.log.Debug("teacher waiting for default break to elapse",
				zap.String("teacher", teacher.Name),
				zap.Time("slot", slot.Start),
			)
			return false
		}
		return true
	}

	rested := last.End.Add(time.Duration(st.cfg.LessonDuration) * time.Minute)
	if slot.Start.Before(rested) {
		st.log.Debug("teacher needs rest",
			zap.String("teacher", teacher.Name),
			zap.Time("slot", slot.Start),
		)
		return false
	}
	return true
}

// studentMayLearn is the symmetric gate for the student side, using
// StudentBreakAfter. Unlike the teacher gate it only consults configured
// breaks when scanning the run, and the post-run wait applies only when a
// configured break starts within 15 minutes of the run's end.
func (st *dayState) studentMayLearn(s *dto.Student, slot Slot) bool {
	lessons := st.lessonsOfStudent(s.Name)
	if len(lessons) == 0 {
		return true
	}

	run := st.runLength(lessons, transitionGap, false)
	if run < st.cfg.StudentBreakAfter {
		return true
	}

	last := lessons[len(lessons)-1]
	if _, ok := st.breakNear(last.End, gateBreakWindow); ok {
		if bw, ok := st.breakNear(last.End, studentWaitWindow); ok {
			if slot.Start.Before(bw.end) {
				st.log.Debug("student waiting for default break to elapse",
					zap.String("student", s.Name),
					zap.Time("slot", slot.Start),
				)
				return false
			}
		}
		return true
	}

	rested := last.End.Add(time.Duration(st.cfg.LessonDuration) * time.Minute)
	if slot.Start.Before(rested) {
		st.log.Debug("student needs rest",
			zap.String("student", s.Name),
			zap.Time("slot", slot.Start),
		)
		return false
	}
	return true
}

func (st *dayState) assign(teacher *dto.Teacher, student *dto.Student, slot Slot, studentState map[string]*StudentState) {
	st.timetable = append(st.timetable, dto.Lesson{
		Start:    slot.Start,
		End:      slot.End,
		Teacher:  teacher.Name,
		Student:  student.Name,
		Room:     teacher.Room,
		Type:     dto.EntryLesson,
		Duration: slot.Duration,
	})
	st.studentLessons[student.Name]++
	st.studentTeacher[student.Name][teacher.Name]++
	if state, ok := studentState[student.Name]; ok {
		state.LastTeacher = teacher.Name
		state.LastLessonTime = slot.Start
	}
}

// insertStudentFatigueBreak synthesizes a rest block right after a run that
// just reached the student threshold, unless a configured break already
// covers that moment.
func (st *dayState) insertStudentFatigueBreak(student *dto.Student) {
	lessons := st.lessonsOfStudent(student.Name)
	if len(lessons) == 0 {
		return
	}
	run := st.runLength(lessons, retrospectiveGap, false)
	if run < st.cfg.StudentBreakAfter {
		return
	}
	last := lessons[len(lessons)-1]
	if _, ok := st.breakNear(last.End, studentInsertWindow); ok {
		return
	}
	st.pushFatigueBreak(last.End, dto.BreakForStudent, student.Name)
}

func (st *dayState) insertTeacherFatigueBreak(teacher *dto.Teacher) {
	lessons := st.lessonsOfTeacher(teacher.Name)
	if len(lessons) == 0 {
		return
	}
	run := st.runLength(lessons, retrospectiveGap, true)
	if run < st.cfg.TeacherBreakAfter {
		return
	}
	last := lessons[len(lessons)-1]
	if _, ok := st.breakNear(last.End, teacherInsertWindow); ok {
		return
	}
	st.pushFatigueBreak(last.End, dto.BreakForTeacher, teacher.Name)
}

func (st *dayState) pushFatigueBreak(start time.Time, breakFor, name string) {
	end := start.Add(time.Duration(st.cfg.LessonDuration) * time.Minute)
	for _, l := range st.timetable {
		if l.Type == dto.EntryBreak && l.Start.Equal(start) && l.End.Equal(end) {
			return
		}
	}
	st.timetable = append(st.timetable, dto.Lesson{
		Start:        start,
		End:          end,
		Type:         dto.EntryBreak,
		Duration:     st.cfg.LessonDuration,
		BreakType:    dto.BreakConsecutive,
		BreakFor:     breakFor,
		BreakForName: name,
	})
	st.log.Debug("inserted fatigue break",
		zap.String("for", breakFor),
		zap.String("name", name),
		zap.Time("start", start),
	)
}

// appendDefaultBreaks records the caller-configured breaks as explicit
// timetable entries once scheduling is done.
func (st *dayState) appendDefaultBreaks() {
	for _, bw := range st.breaks {
		exists := false
		for _, l := range st.timetable {
			if l.Type == dto.EntryBreak && l.Start.Equal(bw.start) && l.End.Equal(bw.end) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		st.timetable = append(st.timetable, dto.Lesson{
			Start:     bw.start,
			End:       bw.end,
			Type:      dto.EntryBreak,
			Duration:  int(bw.end.Sub(bw.start) / time.Minute),
			BreakType: dto.BreakDefault,
		})
	}
}

// finalize sorts the timetable chronologically and collapses break entries
// sharing the same interval, preferring an attributed break over an
// unattributed one.
func (st *dayState) finalize() []dto.Lesson {
	sorted := make([]dto.Lesson, len(st.timetable))
	copy(sorted, st.timetable)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	out := make([]dto.Lesson, 0, len(sorted))
	for _, l := range sorted {
		if l.Type != dto.EntryBreak {
			out = append(out, l)
			continue
		}
		dupAt := -1
		for i, existing := range out {
			if existing.Type == dto.EntryBreak && existing.Start.Equal(l.Start) && existing.End.Equal(l.End) {
				dupAt = i
				break
			}
		}
		if dupAt == -1 {
			out = append(out, l)
		} else if out[dupAt].BreakForName == "" && l.BreakForName != "" {
			out[dupAt] = l
		}
	}
	return out
}

// runLength counts the most recent chain of back-to-back lessons, scanning
// backward from the newest. withExplicit additionally treats synthesized
// break records as run boundaries.
func (st *dayState) runLength(lessons []dto.Lesson, gap time.Duration, withExplicit bool) int {
	run := 1
	for i := len(lessons) - 2; i >= 0; i-- {
		prev := lessons[i]
		cur := lessons[i+1]
		if cur.Start.Sub(prev.End) <= gap && !st.breakBetween(prev.End, cur.Start, withExplicit) {
			run++
		} else {
			break
		}
	}
	return run
}

// breakBetween reports a break lying strictly between two lesson bounds.
func (st *dayState) breakBetween(prevEnd, nextStart time.Time, withExplicit bool) bool {
	for _, bw := range st.breaks {
		if bw.start.After(prevEnd) && bw.end.Before(nextStart) {
			return true
		}
	}
	if !withExplicit {
		return false
	}
	for _, l := range st.timetable {
		if l.Type == dto.EntryBreak && l.Start.After(prevEnd) && l.End.Before(nextStart) {
			return true
		}
	}
	return false
}

// breakNear returns the first configured break starting within window of t.
func (st *dayState) breakNear(t time.Time, window time.Duration) (breakWindow, bool) {
	for _, bw := range st.breaks {
		d := bw.start.Sub(t)
		if d < 0 {
			d = -d
		}
		if d <= window {
			return bw, true
		}
	}
	return breakWindow{}, false
}

func (st *dayState) lessonsOfTeacher(name string) []dto.Lesson {
	return st.chronologicalLessons(func(l dto.Lesson) bool {
		return l.Type == dto.EntryLesson && l.Teacher == name
	})
}

func (st *dayState) lessonsOfStudent(name string) []dto.Lesson {
	return st.chronologicalLessons(func(l dto.Lesson) bool {
		return l.Type == dto.EntryLesson && l.Student == name
	})
}

func (st *dayState) chronologicalLessons(match func(dto.Lesson) bool) []dto.Lesson {
	var out []dto.Lesson
	for _, l := range st.timetable {
		if match(l) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func (st *dayState) teacherLessonCount(name string) int {
	count := 0
	for _, l := range st.timetable {
		if l.Teacher == name {
			count++
		}
	}
	return count
}

func (st *dayState) lessonTotal() int {
	count := 0
	for _, l := range st.timetable {
		if l.Type == dto.EntryLesson {
			count++
		}
	}
	return count
}
