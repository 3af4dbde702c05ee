package record

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Recorder runs best-effort side effects (history appends) off the request
// path. Losing an entry must never break the interactive flow, so failures
// are logged and swallowed and a full queue drops instead of blocking.
type Recorder struct {
	tasks chan task
	wg    sync.WaitGroup
}

type task struct {
	name string
	fn   func() error
}

// NewRecorder starts a recorder with a bounded queue and a single worker.
func NewRecorder(buffer int) *Recorder {
	if buffer <= 0 {
		buffer = 64
	}
	r := &Recorder{tasks: make(chan task, buffer)}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for t := range r.tasks {
		if err := t.fn(); err != nil {
			log.Warn().Err(err).Str("task", t.name).Msg("⚠️ best-effort persistence failed")
		}
	}
}

// Enqueue schedules a side effect without blocking the caller.
func (r *Recorder) Enqueue(name string, fn func() error) {
	select {
	case r.tasks <- task{name: name, fn: fn}:
	default:
		log.Warn().Str("task", name).Msg("⚠️ record queue full, dropping entry")
	}
}

// Close drains pending tasks and stops the worker.
func (r *Recorder) Close() {
	close(r.tasks)
	r.wg.Wait()
}
