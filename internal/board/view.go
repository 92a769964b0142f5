// Package board derives what the user sees from the task collection: the
// filtered, searched, sorted and pinned view, statistics and due-date states.
package board

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

var Filters = []Filter{FilterAll, FilterActive, FilterCompleted, FilterOverdue}

func (f Filter) IsValid() bool {
	return slices.Contains(Filters, f)
}

type SortKey string

const (
	SortTitle    SortKey = "title"
	SortDueDate  SortKey = "due_date"
	SortPriority SortKey = "priority"
)

var SortKeys = []SortKey{SortTitle, SortDueDate, SortPriority}

func (k SortKey) IsValid() bool {
	return slices.Contains(SortKeys, k)
}

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// ViewState is everything besides the collection that shapes the view.
// It is never persisted. An empty Tag keeps every task.
type ViewState struct {
	Filter         Filter
	Tag            string
	Query          string
	DebouncedQuery string
	SortKey        SortKey
	SortDir        SortDir
}

func DefaultViewState() ViewState {
	return ViewState{Filter: FilterAll, SortKey: SortDueDate, SortDir: Asc}
}

// ComputeView returns the tasks to display, in display order. tasks is not modified.
func ComputeView(tasks []model.Task, state ViewState, now time.Time) []model.Task {
	today := model.DateOf(now)
	q := strings.ToLower(state.DebouncedQuery)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if passesFilter(t, state.Filter, today) && HasTag(t, state.Tag) && matchesQuery(t, q) {
			out = append(out, t)
		}
	}

	less := comparator(state.SortKey)
	if state.SortDir == Desc {
		asc := less
		less = func(a, b model.Task) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, less)

	// Pinned tasks move ahead of unpinned ones without disturbing either group's order.
	slices.SortStableFunc(out, func(a, b model.Task) int {
		switch {
		case a.Pinned == b.Pinned:
			return 0
		case a.Pinned:
			return -1
		default:
			return 1
		}
	})
	return out
}

func passesFilter(t model.Task, f Filter, today model.Date) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterOverdue:
		return IsOverdue(t, today)
	default:
		return true
	}
}

// IsOverdue reports whether t is unfinished and due strictly before today.
func IsOverdue(t model.Task, today model.Date) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(today)
}

func comparator(key SortKey) func(a, b model.Task) int {
	switch key {
	case SortTitle:
		return func(a, b model.Task) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortPriority:
		return func(a, b model.Task) int {
			return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		}
	case SortDueDate:
		return compareDue
	default:
		return func(a, b model.Task) int { return 0 }
	}
}

// compareDue orders by due date with undated tasks first.
func compareDue(a, b model.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return -1
	case b.DueDate == nil:
		return 1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}

// HasTag reports whether one of t's tags equals tag, ignoring case. Every task
// has the empty tag.
func HasTag(t model.Task, tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return true
	}
	return slices.ContainsFunc(ParseTags(t.Tags), func(have string) bool {
		return strings.EqualFold(have, tag)
	})
}

// matchesQuery reports whether the lower-cased query q occurs in t's title or
// description.
func matchesQuery(t model.Task, q string) bool {
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}
