package board

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jaekwang-park/taskboard/internal/model"
)

const MaxDescriptionLength = 300

// EmptyCredentialsMessage is shown when a login or registration form is incomplete.
const EmptyCredentialsMessage = "Username and password cannot be empty."

var (
	ErrEmptyCredentials = errors.New("username and password are required")
	ErrWeakPassword     = errors.New("password is too weak")
)

// ValidateCredentials checks a login or, when register is set, a registration form.
func ValidateCredentials(username, password string, register bool) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrEmptyCredentials
	}
	if register && !model.IsStrongPassword(password) {
		return ErrWeakPassword
	}
	return nil
}

// Draft is a task form as the user typed it.
type Draft struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
	Tags        string
	Completed   bool
	Pinned      bool
}

// DraftOf fills a form from an existing task.
func DraftOf(t model.Task) Draft {
	d := Draft{
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Tags:        t.Tags,
		Completed:   t.Completed,
		Pinned:      t.Pinned,
	}
	if t.DueDate != nil {
		d.DueDate = t.DueDate.String()
	}
	return d
}

// FieldErrors holds one message per invalid form field.
type FieldErrors struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
}

func (e FieldErrors) OK() bool {
	return e == FieldErrors{}
}

// Messages lists the non-empty messages in form order.
func (e FieldErrors) Messages() []string {
	var out []string
	for _, m := range []string{e.Title, e.Description, e.DueDate, e.Priority} {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

func (e FieldErrors) Error() string {
	return strings.Join(e.Messages(), " ")
}

// ValidateTask checks d and converts it to the body sent to the API.
// The input is only meaningful when the returned errors are OK.
func ValidateTask(d Draft) (model.TaskInput, FieldErrors) {
	var errs FieldErrors
	in := model.TaskInput{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Completed:   d.Completed,
		Pinned:      d.Pinned,
		Tags:        strings.Join(ParseTags(d.Tags), ", "),
		Priority:    model.Priority(strings.ToLower(strings.TrimSpace(d.Priority))),
	}

	if in.Title == "" {
		errs.Title = "Task title is required."
	}
	if utf8.RuneCountInString(d.Description) > MaxDescriptionLength {
		errs.Description = "Description must be under 300 characters."
	}
	if raw := strings.TrimSpace(d.DueDate); raw != "" {
		due, err := model.ParseDate(raw)
		if err != nil {
			errs.DueDate = "Invalid date format."
		} else {
			in.DueDate = &due
		}
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	} else if !in.Priority.IsValid() {
		errs.Priority = "Priority must be low, medium or high."
	}
	return in, errs
}
