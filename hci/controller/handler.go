package controller

import (
	"fmt"

	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/evt"
)

func (c *Controller) handlePkt(b []byte) error {
	c.logger.Debugf("rx [% X]", b)

	// Strip the 1-byte HCI header and pass down the rest of the packet.
	t, b := b[0], b[1:]
	switch t {
	case hci.PktTypeEvent:
		return c.handleEvt(b)

	// no data channels here
	case hci.PktTypeACLData, hci.PktTypeSCOData, hci.PktTypeVendor:
		return nil
	case hci.PktTypeCommand:
		return fmt.Errorf("unmanaged cmd: % X", b)
	default:
		return fmt.Errorf("invalid packet: 0x%02X % X", t, b)
	}
}

func (c *Controller) handleEvt(b []byte) error {
	e, err := hci.ParseEvent(b)
	if err != nil {
		return err
	}

	switch e.Code {
	case hci.EventCommandComplete:
		return c.handleCommandComplete(evt.CommandComplete(e.Params))
	case hci.EventCommandStatus:
		return c.handleCommandStatus(evt.CommandStatus(e.Params))
	}

	c.mu.Lock()
	r, ok := c.evth[e.Code]
	c.mu.Unlock()

	if !ok {
		if e.Code == hci.EventVendor {
			return nil
		}
		c.logger.Debugf("unhandled event %v", e)
		return nil
	}

	if !r.h.Post(func() { r.cb(e) }) {
		return fmt.Errorf("handler %v closed, %v dropped", r.h.Name(), e.Code)
	}
	return nil
}

// popSent removes the oldest command in flight with opcode op and updates
// the command credits. Called with mu held.
func (c *Controller) popSent(op hci.OpCode, allowed uint8) *pkt {
	c.allowed = int(allowed)

	q := c.sent[op]
	if len(q) == 0 {
		return nil
	}

	p := q[0]
	if len(q) == 1 {
		delete(c.sent, op)
	} else {
		c.sent[op] = q[1:]
	}
	return p
}

func (c *Controller) handleCommandComplete(e evt.CommandComplete) error {
	num, err := e.NumHCICommandPacketsWErr()
	if err != nil {
		return err
	}
	opc, err := e.CommandOpcodeWErr()
	if err != nil {
		return err
	}

	c.mu.Lock()
	p := c.popSent(hci.OpCode(opc), num)
	c.trySendLocked()

	// NOP command, used for flow control purpose [Vol 2, Part E, 4.4]
	if opc == 0x0000 {
		return nil
	}
	if p == nil {
		return fmt.Errorf("can't find the cmd for CommandCompleteEP: % X", []byte(e))
	}

	if p.onComplete != nil {
		p.h.Post(func() { p.onComplete(e) })
	} else if p.onStatus != nil {
		status, _ := e.StatusWErr()
		cs := evt.NewCommandStatus(status, num, opc)
		p.h.Post(func() { p.onStatus(cs) })
	}
	return nil
}

func (c *Controller) handleCommandStatus(e evt.CommandStatus) error {
	status, err := e.StatusWErr()
	if err != nil {
		return err
	}
	num, err := e.NumHCICommandPacketsWErr()
	if err != nil {
		return err
	}
	opc, err := e.CommandOpcodeWErr()
	if err != nil {
		return err
	}

	c.mu.Lock()
	p := c.popSent(hci.OpCode(opc), num)
	c.trySendLocked()

	if opc == 0x0000 {
		return nil
	}
	if p == nil {
		return fmt.Errorf("can't find the cmd for CommandStatusEP: % X", []byte(e))
	}

	if p.onStatus != nil {
		p.h.Post(func() { p.onStatus(e) })
	} else if p.onComplete != nil {
		// a command that completes with Command Complete only reports
		// Command Status when it was rejected
		cc := evt.NewCommandComplete(num, opc, status)
		p.h.Post(func() { p.onComplete(cc) })
	}
	return nil
}
