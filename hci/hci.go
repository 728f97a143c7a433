package hci

import (
	"fmt"

	"github.com/rigado/bredr/handler"
	"github.com/rigado/bredr/hci/evt"
)

// Command is an HCI command packet payload.
type Command interface {
	OpCode() OpCode
	Len() int
	Marshal([]byte) error
}

// CommandRP is the return parameters of a command.
type CommandRP interface {
	Unmarshal(b []byte) error
}

// Event is an HCI event with its header removed.
type Event struct {
	Code   EventCode
	Params []byte
}

func (e Event) String() string {
	return fmt.Sprintf("%v(0x%02x) [% X]", e.Code, uint8(e.Code), e.Params)
}

// ParseEvent splits a raw event packet (without the H4 packet indicator).
func ParseEvent(b []byte) (Event, error) {
	if len(b) < 2 {
		return Event{}, fmt.Errorf("invalid event packet: % X", b)
	}
	code, plen := EventCode(b[0]), int(b[1])
	if plen != len(b[2:]) {
		return Event{}, fmt.Errorf("invalid event packet: % X", b)
	}
	p := make([]byte, plen)
	copy(p, b[2:])
	return Event{Code: code, Params: p}, nil
}

// Bytes encodes the event header and parameters.
func (e Event) Bytes() []byte {
	out := make([]byte, 0, 2+len(e.Params))
	out = append(out, byte(e.Code), byte(len(e.Params)))
	return append(out, e.Params...)
}

// MarshalCommand encodes the command header and parameters.
func MarshalCommand(c Command) ([]byte, error) {
	b := make([]byte, 3+c.Len())
	b[0] = byte(c.OpCode())
	b[1] = byte(c.OpCode() >> 8)
	b[2] = byte(c.Len())
	if err := c.Marshal(b[3:]); err != nil {
		return nil, err
	}
	return b, nil
}

// Transport is the host side of the controller link. Callbacks are posted
// onto the supplied handler, never called inline.
type Transport interface {
	// EnqueueCommand sends c once the controller has a free command slot.
	// onComplete is invoked with the matching Command Complete event.
	EnqueueCommand(c Command, onComplete func(evt.CommandComplete), h *handler.Handler)

	// EnqueueCommandStatus is EnqueueCommand for commands the controller
	// acknowledges with Command Status.
	EnqueueCommandStatus(c Command, onStatus func(evt.CommandStatus), h *handler.Handler)

	RegisterEventHandler(code EventCode, cb func(Event), h *handler.Handler)
	UnregisterEventHandler(code EventCode)
}
