// Package controller implements hci.Transport over a packet oriented
// io.ReadWriteCloser (an HCI user channel socket or an H4 link). Each Read
// must return exactly one H4 packet; a read of zero bytes with no error is a
// read timeout.
package controller

import (
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/bredr"
	"github.com/rigado/bredr/handler"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/evt"
)

type pkt struct {
	cmd        hci.Command
	onComplete func(evt.CommandComplete)
	onStatus   func(evt.CommandStatus)
	h          *handler.Handler
}

type registration struct {
	cb func(hci.Event)
	h  *handler.Handler
}

// Controller is safe for concurrent use.
type Controller struct {
	skt    io.ReadWriteCloser
	logger bredr.Logger

	mu sync.Mutex
	// Host to Controller command flow control [Vol 2, Part E, 4.4]
	allowed int
	queue   []*pkt
	sent    map[hci.OpCode][]*pkt

	// evtHub
	evth map[hci.EventCode]registration

	// wmu orders socket writes; taken before mu is released
	wmu sync.Mutex

	done    chan struct{}
	muClose sync.Mutex
	err     error
}

// New starts reading from skt.
func New(skt io.ReadWriteCloser) *Controller {
	c := &Controller{
		skt:     skt,
		logger:  bredr.GetLogger().ChildLogger(map[string]interface{}{"module": "hci"}),
		allowed: 1,
		sent:    map[hci.OpCode][]*pkt{},
		evth:    map[hci.EventCode]registration{},
		done:    make(chan struct{}),
	}

	go c.sktReadLoop()
	return c
}

func (c *Controller) EnqueueCommand(cmd hci.Command, onComplete func(evt.CommandComplete), h *handler.Handler) {
	c.enqueue(&pkt{cmd: cmd, onComplete: onComplete, h: h})
}

func (c *Controller) EnqueueCommandStatus(cmd hci.Command, onStatus func(evt.CommandStatus), h *handler.Handler) {
	c.enqueue(&pkt{cmd: cmd, onStatus: onStatus, h: h})
}

func (c *Controller) RegisterEventHandler(code hci.EventCode, cb func(hci.Event), h *handler.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evth[code] = registration{cb, h}
}

func (c *Controller) UnregisterEventHandler(code hci.EventCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.evth, code)
}

// Done is closed when the controller stops.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Err returns why the controller stopped.
func (c *Controller) Err() error {
	c.muClose.Lock()
	defer c.muClose.Unlock()
	return c.err
}

func (c *Controller) Close() error {
	return c.close(nil)
}

func (c *Controller) close(err error) error {
	c.muClose.Lock()
	defer c.muClose.Unlock()

	select {
	case <-c.done:
		return nil
	default:
	}

	c.err = err
	close(c.done)
	return errors.Wrap(c.skt.Close(), "can't close hci")
}

func (c *Controller) isOpen() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *Controller) enqueue(p *pkt) {
	if !c.isOpen() {
		c.logger.Warnf("hci closed, %v dropped", p.cmd.OpCode())
		return
	}

	c.mu.Lock()
	c.queue = append(c.queue, p)
	c.trySendLocked()
}

// trySendLocked writes as many queued commands as the controller allows.
// It is called with mu held and releases it.
func (c *Controller) trySendLocked() {
	var out [][]byte
	for c.allowed > 0 && len(c.queue) > 0 {
		p := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]

		b, err := hci.MarshalCommand(p.cmd)
		if err != nil {
			c.logger.Errorf("failed to marshal %v: %v", p.cmd.OpCode(), err)
			continue
		}

		c.allowed--
		op := p.cmd.OpCode()
		c.sent[op] = append(c.sent[op], p)
		out = append(out, append([]byte{hci.PktTypeCommand}, b...))
	}

	c.wmu.Lock()
	c.mu.Unlock()
	defer c.wmu.Unlock()

	for _, b := range out {
		c.logger.Debugf("tx [% X]", b)
		n, err := c.skt.Write(b)
		if err != nil {
			c.close(errors.Wrap(err, "hci: failed to send cmd"))
			return
		}
		if n != len(b) {
			c.close(fmt.Errorf("hci: failed to send whole cmd pkt"))
			return
		}
	}
}

func (c *Controller) sktReadLoop() {
	b := make([]byte, 4096)

	for {
		n, err := c.skt.Read(b)

		switch {
		case n == 0 && err == nil:
			// read timeout
			if !c.isOpen() {
				return
			}
			continue

		//callers depend on detecting io.EOF, don't wrap it.
		case err == io.EOF:
			c.close(err)
			return

		case err != nil:
			if c.isOpen() {
				c.close(errors.Wrap(err, "skt read error"))
			}
			return
		}

		p := make([]byte, n)
		copy(p, b)
		if err := c.handlePkt(p); err != nil {
			c.logger.Warnf("skt: %v", err)
		}
	}
}
