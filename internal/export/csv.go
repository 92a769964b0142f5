// Package export writes the task collection as the CSV file users download.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// FileName is the default name of an exported file.
const FileName = "tasks.csv"

const dateLayout = "1/2/2006"

// NoTasksMessage is shown when an export is requested for an empty collection.
const NoTasksMessage = "No tasks to export."

var ErrNoTasks = errors.New("no tasks to export")

var Header = []string{"Title", "Description", "Completed", "Due Date", "Priority"}

var lineBreaks = regexp.MustCompile(`\r\n|\n|\r`)

// Write renders tasks as CSV. Every field is quoted, including the header, and
// rows are separated by a single newline.
func Write(w io.Writer, tasks []model.Task) error {
	if len(tasks) == 0 {
		return ErrNoTasks
	}

	bw := bufio.NewWriter(w)
	writeRow(bw, Header)
	for _, t := range tasks {
		bw.WriteByte('\n')
		writeRow(bw, record(t))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func record(t model.Task) []string {
	completed := "No"
	if t.Completed {
		completed = "Yes"
	}
	due := ""
	if t.DueDate != nil {
		due = t.DueDate.Time().Format(dateLayout)
	}
	priority := string(t.Priority)
	if priority == "" {
		priority = string(model.PriorityMedium)
	}
	return []string{
		lineBreaks.ReplaceAllString(t.Title, " "),
		lineBreaks.ReplaceAllString(t.Description, " "),
		completed,
		due,
		priority,
	}
}

func writeRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
}

// Parse reads a file produced by Write. Due dates come back at day precision;
// an unreadable date is dropped rather than failing the whole file.
func Parse(r io.Reader) ([]model.Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, name := range Header {
		if strings.TrimSpace(head[i]) != name {
			return nil, fmt.Errorf("unexpected CSV column %d: %q", i+1, head[i])
		}
	}

	var tasks []model.Task
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		t := model.Task{
			Title:       rec[0],
			Description: rec[1],
			Completed:   rec[2] == "Yes",
			Priority:    model.Priority(rec[4]),
		}
		if rec[3] != "" {
			if parsed, err := time.Parse(dateLayout, rec[3]); err == nil {
				d := model.DateOf(parsed)
				t.DueDate = &d
			}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
