package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jaekwang-park/taskboard/internal/board"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldDueDate
	fieldPriority
	fieldTags
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Due (YYYY-MM-DD)", "Priority", "Tags"}

// taskForm edits one task. editID is zero for a new task.
type taskForm struct {
	editID    int64
	inputs    [fieldCount]textinput.Model
	focus     int
	completed bool
	pinned    bool
}

func newTaskForm(editID int64, d board.Draft) taskForm {
	f := taskForm{editID: editID, completed: d.Completed, pinned: d.Pinned}
	values := [fieldCount]string{d.Title, d.Description, d.DueDate, d.Priority, d.Tags}
	placeholders := [fieldCount]string{"What needs doing?", "Optional details", "2026-01-31", "low, medium or high", "comma, separated"}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 512
		ti.Width = 48
		ti.SetValue(values[i])
		f.inputs[i] = ti
	}
	f.inputs[fieldTitle].Focus()
	return f
}

func (f taskForm) draft() board.Draft {
	return board.Draft{
		Title:       f.inputs[fieldTitle].Value(),
		Description: f.inputs[fieldDescription].Value(),
		DueDate:     strings.TrimSpace(f.inputs[fieldDueDate].Value()),
		Priority:    f.inputs[fieldPriority].Value(),
		Tags:        f.inputs[fieldTags].Value(),
		Completed:   f.completed,
		Pinned:      f.pinned,
	}
}

func (f *taskForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f taskForm) update(msg tea.Msg) (taskForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}
