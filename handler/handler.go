// Package handler provides a serialized task queue. Every task posted to a
// Handler runs on one goroutine, in the order it was posted.
package handler

import "sync"

// Handler runs posted closures one at a time in FIFO order.
type Handler struct {
	name string

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	running bool
	closed  bool
	done    chan struct{}
}

// New starts a handler goroutine.
func New(name string) *Handler {
	h := &Handler{
		name: name,
		done: make(chan struct{}),
	}
	h.cond = sync.NewCond(&h.mu)

	go h.loop()
	return h
}

func (h *Handler) Name() string {
	return h.name
}

// Post queues f. It returns false if the handler is closed.
func (h *Handler) Post(f func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.queue = append(h.queue, f)
	h.cond.Broadcast()
	return true
}

// WaitIdle blocks until the queue is empty and no task is running, including
// tasks posted by tasks. It must not be called from the handler goroutine.
func (h *Handler) WaitIdle() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for !h.closed && (len(h.queue) > 0 || h.running) {
		h.cond.Wait()
	}
}

// Close stops the handler. Pending tasks are dropped; a running task finishes.
// It must not be called from the handler goroutine.
func (h *Handler) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.queue = nil
	h.cond.Broadcast()
	h.mu.Unlock()

	<-h.done
}

// Done is closed once the handler goroutine has exited.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

func (h *Handler) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Handler) loop() {
	defer close(h.done)

	for {
		h.mu.Lock()
		for !h.closed && len(h.queue) == 0 {
			h.cond.Wait()
		}
		if h.closed {
			h.mu.Unlock()
			return
		}

		f := h.queue[0]
		h.queue[0] = nil
		h.queue = h.queue[1:]
		h.running = true
		h.mu.Unlock()

		f()

		h.mu.Lock()
		h.running = false
		h.cond.Broadcast()
		h.mu.Unlock()
	}
}
