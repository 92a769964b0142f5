package board

import (
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// Weekdays labels Stats.Week.
var Weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type Stats struct {
	Total     int
	Completed int
	Active    int
	Overdue   int

	High   int
	Medium int
	Low    int

	// Week counts tasks due on each day of the current Monday-first week.
	Week [7]int
}

// ComputeStats summarises the whole collection regardless of the view state.
// Tasks without a priority count as medium.
func ComputeStats(tasks []model.Task, now time.Time) Stats {
	today := model.DateOf(now)
	monday := today.AddDays(-mondayOffset(now.Weekday()))

	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		} else {
			s.Active++
		}
		if IsOverdue(t, today) {
			s.Overdue++
		}

		switch t.Priority {
		case model.PriorityHigh:
			s.High++
		case model.PriorityLow:
			s.Low++
		case model.PriorityMedium, "":
			s.Medium++
		}

		if t.DueDate != nil {
			for i := range s.Week {
				if *t.DueDate == monday.AddDays(i) {
					s.Week[i]++
					break
				}
			}
		}
	}
	return s
}

func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// DueState classifies a task's due date for display.
type DueState int

const (
	DueNone DueState = iota
	DueOverdue
	DueToday
	DueSoon
	DueLater
)

const soonWindowDays = 3

// DueStateOf classifies t relative to now. Completed and undated tasks are DueNone.
func DueStateOf(t model.Task, now time.Time) DueState {
	if t.DueDate == nil || t.Completed {
		return DueNone
	}
	today := model.DateOf(now)
	switch c := t.DueDate.Compare(today); {
	case c < 0:
		return DueOverdue
	case c == 0:
		return DueToday
	case !today.AddDays(soonWindowDays).Before(*t.DueDate):
		return DueSoon
	default:
		return DueLater
	}
}
