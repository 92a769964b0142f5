package repository

import (
	"fmt"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// dbTime scans timestamps that arrive as time.Time (postgres) or text (sqlite).
type dbTime struct {
	time.Time
}

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v
		return nil
	case []byte:
		return t.Scan(string(v))
	case string:
		for _, layout := range sqliteTimeLayouts {
			if parsed, err := time.Parse(layout, v); err == nil {
				t.Time = parsed
				return nil
			}
		}
		return fmt.Errorf("unrecognized timestamp %q", v)
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

type taskRow struct {
	ID          int64       `db:"id"`
	OwnerID     int64       `db:"owner_id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	DueDate     *model.Date `db:"due_date"`
	Completed   bool        `db:"completed"`
	Priority    string      `db:"priority"`
	Tags        string      `db:"tags"`
	Pinned      bool        `db:"pinned"`
	CreatedAt   dbTime      `db:"created_at"`
}

func (r taskRow) toModel() model.Task {
	return model.Task{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Completed:   r.Completed,
		Priority:    model.Priority(r.Priority),
		Tags:        r.Tags,
		Pinned:      r.Pinned,
		CreatedAt:   r.CreatedAt.Time,
	}
}

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    dbTime `db:"created_at"`
}

func (r userRow) toModel() model.User {
	return model.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time,
	}
}
