package controller

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/handler"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/cmd"
	"github.com/rigado/bredr/hci/evt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addr = bredr.MustParseAddress("11:22:33:44:55:66")

// fakeController is the controller end of the link.
type fakeController struct {
	t    *testing.T
	conn net.Conn
	rx   chan []byte
}

func newFake(t *testing.T) (*Controller, *fakeController) {
	host, dev := net.Pipe()
	f := &fakeController{t: t, conn: dev, rx: make(chan []byte, 16)}
	go func() {
		b := make([]byte, 512)
		for {
			n, err := dev.Read(b)
			if err != nil {
				close(f.rx)
				return
			}
			p := make([]byte, n)
			copy(p, b)
			f.rx <- p
		}
	}()

	c := New(host)
	t.Cleanup(func() {
		c.Close()
		dev.Close()
	})
	return c, f
}

func (f *fakeController) next() []byte {
	select {
	case p := <-f.rx:
		return p
	case <-time.After(time.Second):
		f.t.Fatal("no command written")
		return nil
	}
}

func (f *fakeController) quiet() {
	select {
	case p := <-f.rx:
		f.t.Fatalf("unexpected write [% X]", p)
	case <-time.After(50 * time.Millisecond):
	}
}

func (f *fakeController) event(code hci.EventCode, params []byte) {
	e := hci.Event{Code: code, Params: params}
	_, err := f.conn.Write(append([]byte{hci.PktTypeEvent}, e.Bytes()...))
	require.NoError(f.t, err)
}

func negReply() hci.Command {
	return &cmd.LinkKeyRequestNegativeReply{BDAddr: addr}
}

func TestCommandComplete(t *testing.T) {
	c, f := newFake(t)
	h := handler.New("test")
	t.Cleanup(h.Close)

	got := make(chan evt.CommandComplete, 1)
	c.EnqueueCommand(negReply(), func(cc evt.CommandComplete) { got <- cc }, h)

	le := addr.LE()
	want := append([]byte{hci.PktTypeCommand, 0x0C, 0x04, 6}, le[:]...)
	assert.Equal(t, want, f.next())

	f.event(hci.EventCommandComplete, evt.NewCommandComplete(1, uint16(hci.OpLinkKeyRequestNegativeReply), append([]byte{0x00}, le[:]...)...))

	select {
	case cc := <-got:
		status, err := cc.StatusWErr()
		require.NoError(t, err)
		assert.Equal(t, uint8(0), status)
	case <-time.After(time.Second):
		t.Fatal("no command complete")
	}
}

func TestCommandCredits(t *testing.T) {
	c, f := newFake(t)
	h := handler.New("test")
	t.Cleanup(h.Close)

	c.EnqueueCommand(negReply(), nil, h)
	c.EnqueueCommand(&cmd.PinCodeRequestNegativeReply{BDAddr: addr}, nil, h)

	assert.Equal(t, byte(0x0C), f.next()[1])
	f.quiet()

	// a NOP grants the credit back without completing anything
	f.event(hci.EventCommandComplete, evt.NewCommandComplete(1, 0x0000))
	assert.Equal(t, byte(0x0E), f.next()[1])
}

func TestCommandStatusRejectsCompleteCommand(t *testing.T) {
	c, f := newFake(t)
	h := handler.New("test")
	t.Cleanup(h.Close)

	got := make(chan evt.CommandComplete, 1)
	c.EnqueueCommand(negReply(), func(cc evt.CommandComplete) { got <- cc }, h)
	f.next()

	f.event(hci.EventCommandStatus, evt.NewCommandStatus(uint8(hci.ErrConnID), 1, uint16(hci.OpLinkKeyRequestNegativeReply)))

	select {
	case cc := <-got:
		status, err := cc.StatusWErr()
		require.NoError(t, err)
		assert.Equal(t, uint8(hci.ErrConnID), status)
	case <-time.After(time.Second):
		t.Fatal("no command complete")
	}
}

func TestEventRouting(t *testing.T) {
	c, f := newFake(t)
	h := handler.New("test")
	t.Cleanup(h.Close)

	got := make(chan hci.Event, 1)
	c.RegisterEventHandler(hci.EventLinkKeyRequest, func(e hci.Event) { got <- e }, h)

	le := addr.LE()
	f.event(hci.EventLinkKeyRequest, le[:])

	select {
	case e := <-got:
		assert.Equal(t, hci.EventLinkKeyRequest, e.Code)
		a, err := evt.LinkKeyRequest(e.Params).BDAddrWErr()
		require.NoError(t, err)
		assert.Equal(t, addr, a)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}

	c.UnregisterEventHandler(hci.EventLinkKeyRequest)
	f.event(hci.EventLinkKeyRequest, le[:])
	select {
	case <-got:
		t.Fatal("event after unregister")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEOFStopsController(t *testing.T) {
	c, f := newFake(t)

	f.conn.Close()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("controller still running")
	}
	assert.Equal(t, io.EOF, c.Err())
}
