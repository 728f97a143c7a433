// Package h4 carries HCI over a UART style byte stream (a serial port or a
// TCP bridge) and hands the controller one packet per Read.
package h4

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bredr"
)

const (
	rxQueueSize = 64
	readTimeout = time.Second
)

type h4 struct {
	rw     io.ReadWriteCloser
	logger bredr.Logger

	// transient reports whether a failed read of the link can be retried
	transient func(n int, err error) bool

	rmu sync.Mutex
	wmu sync.Mutex

	rxQueue chan []byte

	done chan struct{}
	cmu  sync.Mutex
}

func newH4(rw io.ReadWriteCloser, transient func(int, error) bool) *h4 {
	h := &h4{
		rw:        rw,
		logger:    bredr.GetLogger().ChildLogger(map[string]interface{}{"module": "h4"}),
		transient: transient,
		rxQueue:   make(chan []byte, rxQueueSize),
		done:      make(chan struct{}),
	}

	go h.rxLoop()
	return h
}

// Read returns one complete packet, or 0 and no error when none arrived
// within the read timeout.
func (h *h4) Read(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.rmu.Lock()
	defer h.rmu.Unlock()

	select {
	case t := <-h.rxQueue:
		if len(p) < len(t) {
			return 0, errors.Errorf("buffer too small, need %v", len(t))
		}
		return copy(p, t), nil

	case <-h.done:
		return 0, io.EOF

	case <-time.After(readTimeout):
		return 0, nil
	}
}

func (h *h4) Write(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()
	n, err := h.rw.Write(p)
	return n, errors.Wrap(err, "can't write h4")
}

func (h *h4) Close() error {
	h.cmu.Lock()
	defer h.cmu.Unlock()

	select {
	case <-h.done:
		return nil

	default:
		close(h.done)
		h.logger.Debug("closing h4")
		return errors.Wrap(h.rw.Close(), "can't close h4")
	}
}

func (h *h4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *h4) rxLoop() {
	f := newFrame(h.rxQueue)
	tmp := make([]byte, 512)
	for h.isOpen() {
		n, err := h.rw.Read(tmp)
		if err != nil || n == 0 {
			if h.transient(n, err) {
				continue
			}
			if h.isOpen() {
				h.logger.Errorf("h4 read: %v", err)
				h.Close()
			}
			return
		}

		f.Assemble(tmp[:n])
	}
}
