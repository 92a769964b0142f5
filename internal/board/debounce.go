package board

import (
	"sync"
	"time"

	"github.com/jaekwang-park/taskboard/internal/clock"
)

const DefaultDebounce = 500 * time.Millisecond

// Debouncer runs only the most recent function passed to Trigger, once no
// newer call has arrived for the quiet period.
type Debouncer struct {
	sched clock.Scheduler
	quiet time.Duration

	mu    sync.Mutex
	timer clock.Timer
	seq   uint64
}

func NewDebouncer(sched clock.Scheduler, quiet time.Duration) *Debouncer {
	return &Debouncer{sched: sched, quiet: quiet}
}

func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.sched.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			f()
		}
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}
