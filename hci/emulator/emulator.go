// Package emulator is an in-process controller with remote peers attached.
// It implements hci.Transport and plays the controller side of Secure Simple
// Pairing so the security module can be run without hardware.
package emulator

import (
	"sync"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/handler"
	"github.com/rigado/bredr/hci"
	"github.com/rigado/bredr/hci/cmd"
	"github.com/rigado/bredr/hci/evt"
	"github.com/rigado/bredr/security/ssp"
)

// Peer is a remote device and how it behaves during pairing.
type Peer struct {
	Address                    bredr.Address
	IoCapability               hci.IoCapability
	OobDataPresent             hci.OobDataPresent
	AuthenticationRequirements hci.AuthenticationRequirements

	// NumericValue is sent in User Confirmation Request.
	NumericValue uint32
	// Passkey is what the host must enter, or what the peer displays.
	Passkey uint32
	// LinkKey is reported in Link Key Notification on success.
	LinkKey [hci.LinkKeySize]byte
	// RejectConfirmation makes the peer answer "no" to numeric comparison.
	RejectConfirmation bool
}

type registration struct {
	cb func(hci.Event)
	h  *handler.Handler
}

type session struct {
	peer          Peer
	peerInitiated bool
	host          ssp.Side
	hostReplied   bool
}

// Emulator is safe for concurrent use.
type Emulator struct {
	mu       sync.Mutex
	events   map[hci.EventCode]registration
	peers    map[bredr.Address]*session
	sent     []hci.Command
	failNext map[hci.OpCode]hci.ErrorCode
	logger   bredr.Logger
}

func New() *Emulator {
	return &Emulator{
		events:   map[hci.EventCode]registration{},
		peers:    map[bredr.Address]*session{},
		failNext: map[hci.OpCode]hci.ErrorCode{},
		logger:   bredr.GetLogger().ChildLogger(map[string]interface{}{"module": "emulator"}),
	}
}

// AddPeer attaches p, replacing any peer with the same address.
func (e *Emulator) AddPeer(p Peer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.peers[p.Address] = &session{peer: p}
}

func (e *Emulator) RemovePeer(a bredr.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.peers, a)
}

// Commands returns every command the host has sent, in order.
func (e *Emulator) Commands() []hci.Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]hci.Command(nil), e.sent...)
}

// CommandsFor returns the commands the host has sent for a.
func (e *Emulator) CommandsFor(a bredr.Address) []hci.Command {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []hci.Command
	for _, c := range e.sent {
		if ac, ok := c.(cmd.Addressed); ok && ac.Address() == a {
			out = append(out, c)
		}
	}
	return out
}

// FailNextCommand makes the next op complete with status.
func (e *Emulator) FailNextCommand(op hci.OpCode, status hci.ErrorCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failNext[op] = status
}

// StartPairing starts authentication with a as if the host had requested it:
// the controller asks the host for a stored link key.
func (e *Emulator) StartPairing(a bredr.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.peers[a]; ok {
		s.reset(false)
	}
	e.emit(hci.EventLinkKeyRequest, evt.NewLinkKeyRequest(a))
}

// PeerInitiate starts pairing from the remote side. The peer's IO capability
// response reaches the host before the host's own request.
func (e *Emulator) PeerInitiate(a bredr.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.peers[a]; ok {
		s.reset(true)
	}
	e.emit(hci.EventLinkKeyRequest, evt.NewLinkKeyRequest(a))
}

// Inject delivers a raw event to the host.
func (e *Emulator) Inject(ev hci.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emit(ev.Code, ev.Params)
}

func (s *session) reset(peerInitiated bool) {
	s.peerInitiated = peerInitiated
	s.host = ssp.Side{}
	s.hostReplied = false
}

// emit must be called with mu held.
func (e *Emulator) emit(code hci.EventCode, p []byte) {
	r, ok := e.events[code]
	if !ok {
		e.logger.Debugf("no handler for %v, dropped", code)
		return
	}

	ev := hci.Event{Code: code, Params: append([]byte(nil), p...)}
	if !r.h.Post(func() { r.cb(ev) }) {
		e.logger.Debugf("handler closed, %v dropped", code)
	}
}

func (e *Emulator) RegisterEventHandler(code hci.EventCode, cb func(hci.Event), h *handler.Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events[code] = registration{cb, h}
}

func (e *Emulator) UnregisterEventHandler(code hci.EventCode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.events, code)
}

// EnqueueCommand completes c at once, then plays the controller's reaction.
func (e *Emulator) EnqueueCommand(c hci.Command, onComplete func(evt.CommandComplete), h *handler.Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sent = append(e.sent, c)

	status := hci.Success
	if s, ok := e.failNext[c.OpCode()]; ok {
		status = s
		delete(e.failNext, c.OpCode())
	}

	var rp []byte
	if ac, ok := c.(cmd.Addressed); ok {
		rp = cmd.ReplyReturnParameters(status, ac.Address())
	} else {
		rp = []byte{byte(status)}
	}

	cc := evt.NewCommandComplete(1, uint16(c.OpCode()), rp...)
	if onComplete != nil && !h.Post(func() { onComplete(cc) }) {
		return
	}

	if status.Success() {
		e.react(c)
	}
}

// EnqueueCommandStatus acknowledges c with a successful Command Status.
func (e *Emulator) EnqueueCommandStatus(c hci.Command, onStatus func(evt.CommandStatus), h *handler.Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sent = append(e.sent, c)
	cs := evt.NewCommandStatus(uint8(hci.Success), 1, uint16(c.OpCode()))
	if onStatus != nil {
		h.Post(func() { onStatus(cs) })
	}
}
