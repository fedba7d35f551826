package book

import (
	"sync"

	"go.uber.org/zap"
)

// Event is a notification view sends to its host.
type Event string

const (
	// EventNextChapter is emitted when navigating forward from the last page.
	EventNextChapter Event = "next-chapter"
	// EventPrevChapter is emitted when navigating backward from the first page.
	EventPrevChapter Event = "prev-chapter"
)

type handler struct {
	fn func()
}

// On subscribes fn to event. Handlers run in subscription order, returned
// function cancels subscription.
func (v *View) On(event Event, fn func()) func() {
	h := &handler{fn: fn}
	v.handlers[event] = append(v.handlers[event], h)
	return func() {
		list := v.handlers[event]
		for i, x := range list {
			if x == h {
				v.handlers[event] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

func (v *View) emit(event Event) {
	v.log.Debug("Emitting event", zap.String("event", string(event)))
	for _, h := range append([]*handler(nil), v.handlers[event]...) {
		h.fn()
	}
}

// Dispatcher queues functions posted from any goroutine so they run one at a
// time on the goroutine which owns the view.
type Dispatcher struct {
	mu    sync.Mutex
	queue []func()
}

// Post queues fn.
func (d *Dispatcher) Post(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, fn)
}

// Pending returns number of queued functions.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Drain runs queued functions in order including the ones posted while
// draining. It returns number of functions run.
func (d *Dispatcher) Drain() int {
	n := 0
	for {
		d.mu.Lock()
		queue := d.queue
		d.queue = nil
		d.mu.Unlock()
		if len(queue) == 0 {
			return n
		}
		for _, fn := range queue {
			fn()
			n++
		}
	}
}
