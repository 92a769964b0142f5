package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Rank orders priorities high < medium < low; anything else sorts after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

type Task struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *Date     `json:"due_date"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	Tags        string    `json:"tags"`
	Pinned      bool      `json:"pinned"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskInput is the full-record body sent on create and replace.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     *Date    `json:"due_date"`
	Completed   bool     `json:"completed"`
	Priority    Priority `json:"priority"`
	Tags        string   `json:"tags"`
	Pinned      bool     `json:"pinned"`
}

// Input returns the replaceable fields of t.
func (t Task) Input() TaskInput {
	return TaskInput{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		Priority:    t.Priority,
		Tags:        t.Tags,
		Pinned:      t.Pinned,
	}
}

// Apply overwrites the replaceable fields of t with in.
func (t *Task) Apply(in TaskInput) {
	t.Title = in.Title
	t.Description = in.Description
	t.DueDate = in.DueDate
	t.Completed = in.Completed
	t.Priority = in.Priority
	t.Tags = in.Tags
	t.Pinned = in.Pinned
}
