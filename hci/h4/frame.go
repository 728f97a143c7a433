package h4

import (
	"fmt"
	"time"

	"github.com/rigado/bredr/hci"
)

const (
	eventHeaderLength = 3
	aclHeaderLength   = 5

	frameTimeout = 500 * time.Millisecond
)

// frame reassembles H4 packets from a byte stream. Complete packets,
// including the packet indicator, are pushed to out.
type frame struct {
	b       []byte
	timeout time.Time
	out     chan []byte
	pktType byte
}

func newFrame(c chan []byte) *frame {
	return &frame{
		b:   make([]byte, 0, 256),
		out: c,
	}
}

func (f *frame) Assemble(b []byte) {
	switch {
	case len(b) == 0:
		return

	case !f.timeout.IsZero() && time.Now().After(f.timeout):
		//timed out, drop the partial packet
		f.reset()
	}

	if len(f.b) == 0 {
		if err := f.waitStart(b); err != nil {
			return
		}
	} else {
		f.b = append(f.b, b...)
	}

	rf, err := f.frame()
	if err != nil {
		return
	}
	out := make([]byte, len(rf))
	copy(out, rf)
	f.out <- out

	// shift
	var rem []byte
	if len(f.b) > len(rf) {
		rem = make([]byte, len(f.b)-len(rf))
		copy(rem, f.b[len(rf):])
	}
	f.reset()
	f.Assemble(rem)
}

func (f *frame) reset() {
	f.b = make([]byte, 0, 256)
	f.timeout = time.Time{}
}

func (f *frame) waitStart(b []byte) error {
	for i, v := range b {
		switch v {
		case hci.PktTypeEvent, hci.PktTypeACLData:
		default:
			continue
		}

		f.pktType = v
		f.timeout = time.Now().Add(frameTimeout)
		f.b = append(f.b, b[i:]...)
		return nil
	}

	return fmt.Errorf("couldnt find start byte")
}

func (f *frame) length() (int, error) {
	switch f.pktType {
	case hci.PktTypeACLData:
		if len(f.b) < aclHeaderLength {
			return 0, fmt.Errorf("not enough bytes")
		}
		return aclHeaderLength + (int(f.b[3]) | int(f.b[4])<<8), nil

	case hci.PktTypeEvent:
		if len(f.b) < eventHeaderLength {
			return 0, fmt.Errorf("not enough bytes")
		}
		return eventHeaderLength + int(f.b[2]), nil

	default:
		return 0, fmt.Errorf("invalid packet type %v", f.pktType)
	}
}

func (f *frame) frame() ([]byte, error) {
	tl, err := f.length()
	if err != nil {
		return nil, err
	}

	if len(f.b) < tl {
		return nil, fmt.Errorf("not enough bytes")
	}
	return f.b[:tl], nil
}
