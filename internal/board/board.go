package board

import (
	"slices"
	"sync"
	"time"

	"github.com/jaekwang-park/taskboard/internal/clock"
	"github.com/jaekwang-park/taskboard/internal/model"
)

type Options struct {
	Scheduler clock.Scheduler
	Debounce  time.Duration
}

// Board holds the authoritative task collection and the view state.
// Mutations are keyed by task id. It is safe for concurrent use.
type Board struct {
	debounce *Debouncer

	mu       sync.Mutex
	tasks    []model.Task
	state    ViewState
	onChange func()
	// held ids stay in the collection until Release; true marks a removal
	// that arrived meanwhile.
	held map[int64]bool
}

func New(opts Options) *Board {
	if opts.Scheduler == nil {
		opts.Scheduler = clock.Real{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Board{
		debounce: NewDebouncer(opts.Scheduler, opts.Debounce),
		state:    DefaultViewState(),
		held:     make(map[int64]bool),
	}
}

// OnChange sets the function called after every change to the collection or
// the effective view state. It runs outside the board's lock.
func (b *Board) OnChange(f func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = f
}

func (b *Board) update(f func()) {
	b.mu.Lock()
	f()
	notify := b.onChange
	b.mu.Unlock()
	if notify != nil {
		notify()
	}
}

func (b *Board) SetCollection(tasks []model.Task) {
	b.update(func() { b.tasks = slices.Clone(tasks) })
}

func (b *Board) Append(t model.Task) {
	b.update(func() { b.tasks = append(b.tasks, t) })
}

// Patch replaces the task with t's id in place. Unknown ids are ignored.
func (b *Board) Patch(t model.Task) {
	b.update(func() {
		if i := b.indexLocked(t.ID); i >= 0 {
			b.tasks[i] = t
		}
	})
}

// Remove deletes the task with id. A held task is deleted on Release instead.
func (b *Board) Remove(id int64) {
	b.update(func() {
		if _, ok := b.held[id]; ok {
			b.held[id] = true
			return
		}
		b.removeLocked(id)
	})
}

// Hold keeps the task with id in the collection until Release, even if it is
// removed in the meantime.
func (b *Board) Hold(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.held[id]; !ok {
		b.held[id] = false
	}
}

// Release ends a Hold and carries out a removal made while it was held.
func (b *Board) Release(id int64) {
	b.update(func() {
		removed, ok := b.held[id]
		delete(b.held, id)
		if ok && removed {
			b.removeLocked(id)
		}
	})
}

func (b *Board) removeLocked(id int64) {
	if i := b.indexLocked(id); i >= 0 {
		b.tasks = slices.Delete(b.tasks, i, i+1)
	}
}

// Clear empties the collection, drops holds and resets the search.
func (b *Board) Clear() {
	b.debounce.Cancel()
	b.update(func() {
		clear(b.held)
		b.tasks = nil
		b.state.Query = ""
		b.state.DebouncedQuery = ""
	})
}

func (b *Board) indexLocked(id int64) int {
	return slices.IndexFunc(b.tasks, func(t model.Task) bool { return t.ID == id })
}

func (b *Board) Tasks() []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.tasks)
}

func (b *Board) Task(id int64) (model.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexLocked(id); i >= 0 {
		return b.tasks[i], true
	}
	return model.Task{}, false
}

func (b *Board) State() ViewState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Board) SetFilter(f Filter) {
	b.update(func() { b.state.Filter = f })
}

// SetTag limits the view to tasks carrying tag. An empty tag shows all tasks.
func (b *Board) SetTag(tag string) {
	b.update(func() { b.state.Tag = tag })
}

func (b *Board) SetSort(key SortKey, dir SortDir) {
	b.update(func() {
		b.state.SortKey = key
		b.state.SortDir = dir
	})
}

// SetQuery records the raw search text. The view picks it up once the text has
// been stable for the debounce period.
func (b *Board) SetQuery(raw string) {
	b.mu.Lock()
	b.state.Query = raw
	b.mu.Unlock()
	b.debounce.Trigger(func() { b.applyQuery(raw) })
}

// ApplyQuery makes q the effective search immediately, dropping any pending
// debounced update.
func (b *Board) ApplyQuery(q string) {
	b.debounce.Cancel()
	b.applyQuery(q)
}

func (b *Board) applyQuery(q string) {
	b.update(func() {
		b.state.Query = q
		b.state.DebouncedQuery = q
	})
}

func (b *Board) View(now time.Time) []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ComputeView(b.tasks, b.state, now)
}

func (b *Board) Stats(now time.Time) Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ComputeStats(b.tasks, now)
}
