package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/jaekwang-park/taskboard/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := NewDB(context.Background(), "sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, users *SQLUserRepository, name string) model.User {
	t.Helper()
	u, err := users.Create(context.Background(), name, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestUserRepository_Create(t *testing.T) {
	users := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	u := createUser(t, users, "alice")
	if u.ID == 0 {
		t.Error("expected generated id")
	}
	if u.PasswordHash != "hash" {
		t.Errorf("expected hash stored, got %q", u.PasswordHash)
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected created_at")
	}

	_, err := users.Create(ctx, "alice", "other")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	users := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	created := createUser(t, users, "bob")

	got, err := users.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected id %d, got %d", created.ID, got.ID)
	}

	_, err = users.GetByUsername(ctx, "nobody")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUserRepository_GetOrCreate(t *testing.T) {
	users := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first, err := users.GetOrCreate(ctx, "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.PasswordHash != "" {
		t.Errorf("expected empty hash, got %q", first.PasswordHash)
	}

	second, err := users.GetOrCreate(ctx, "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same user, got %d and %d", first.ID, second.ID)
	}
}

func TestTaskRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()
	owner := createUser(t, users, "dave")

	due := model.Date{Year: 2025, Month: 3, Day: 14}
	created, err := tasks.Create(ctx, model.Task{
		OwnerID:  owner.ID,
		Title:    "write report",
		DueDate:  &due,
		Priority: model.PriorityHigh,
		Tags:     "work, q1",
		Pinned:   true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.OwnerID != owner.ID {
		t.Fatalf("unexpected created task: %+v", created)
	}
	if created.DueDate == nil || *created.DueDate != due {
		t.Errorf("expected due %v, got %v", due, created.DueDate)
	}
	if !created.Pinned || created.Completed {
		t.Errorf("unexpected flags: pinned=%v completed=%v", created.Pinned, created.Completed)
	}

	got, err := tasks.GetByID(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "write report" || got.Priority != model.PriorityHigh || got.Tags != "work, q1" {
		t.Errorf("unexpected task: %+v", got)
	}

	got.Completed = true
	got.DueDate = nil
	got.Title = "report sent"
	updated, err := tasks.Update(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.DueDate != nil || updated.Title != "report sent" {
		t.Errorf("unexpected updated task: %+v", updated)
	}

	if err := tasks.Delete(ctx, owner.ID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tasks.GetByID(ctx, owner.ID, created.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows after delete, got %v", err)
	}
	if err := tasks.Delete(ctx, owner.ID, created.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows on second delete, got %v", err)
	}
}

func TestTaskRepository_OwnerScoping(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()
	alice := createUser(t, users, "alice")
	mallory := createUser(t, users, "mallory")

	task, err := tasks.Create(ctx, model.Task{OwnerID: alice.ID, Title: "private", Priority: model.PriorityLow})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := tasks.GetByID(ctx, mallory.ID, task.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for other owner, got %v", err)
	}

	task.OwnerID = mallory.ID
	if _, err := tasks.Update(ctx, task); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows updating other owner's task, got %v", err)
	}
	if err := tasks.Delete(ctx, mallory.ID, task.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows deleting other owner's task, got %v", err)
	}

	list, err := tasks.List(ctx, mallory.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected no tasks for mallory, got %d", len(list))
	}
}

func TestTaskRepository_ListOrder(t *testing.T) {
	db := newTestDB(t)
	tasks := NewTaskRepository(db)
	ctx := context.Background()
	owner := createUser(t, NewUserRepository(db), "erin")

	for _, title := range []string{"first", "second", "third"} {
		if _, err := tasks.Create(ctx, model.Task{OwnerID: owner.ID, Title: title, Priority: model.PriorityMedium}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	list, err := tasks.List(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(list))
	}
	for i, want := range []string{"first", "second", "third"} {
		if list[i].Title != want {
			t.Errorf("position %d: expected %s, got %s", i, want, list[i].Title)
		}
	}
}

func TestDBTime_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		wantErr bool
	}{
		{"sqlite text", "2025-01-02 03:04:05", false},
		{"rfc3339", "2025-01-02T03:04:05Z", false},
		{"bytes", []byte("2025-01-02 03:04:05"), false},
		{"nil", nil, false},
		{"garbage", "yesterday", true},
		{"int", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d dbTime
			err := d.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Errorf("Scan(%v) error = %v, wantErr %v", tt.src, err, tt.wantErr)
			}
		})
	}
}
