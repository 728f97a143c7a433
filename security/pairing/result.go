package pairing

import (
	"fmt"
	"strings"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/hci"
)

// Result is either a PairingResult or a PairingFailure.
type Result interface {
	isResult()
}

// DistributedKeys is the key material a successful pairing produced.
type DistributedKeys struct {
	LinkKey [hci.LinkKeySize]byte
	KeyType hci.KeyType
}

// PairingResult is a successful pairing.
type PairingResult struct {
	Address         bredr.AddressWithType
	DistributedKeys DistributedKeys
}

func (PairingResult) isResult() {}

func (r PairingResult) String() string {
	return fmt.Sprintf("paired %v (%v)", r.Address, r.DistributedKeys.KeyType)
}

// PairingFailure describes why pairing stopped.
type PairingFailure struct {
	Message string

	receivedCode    hci.EventCode
	hasReceivedCode bool
	reason          hci.ErrorCode
	hasReason       bool
}

func (PairingFailure) isResult() {}

func NewFailure(format string, args ...interface{}) PairingFailure {
	return PairingFailure{Message: fmt.Sprintf(format, args...)}
}

// WithReceivedCode records the event that caused the failure.
func (f PairingFailure) WithReceivedCode(c hci.EventCode) PairingFailure {
	f.receivedCode = c
	f.hasReceivedCode = true
	return f
}

// WithReason records the controller error code.
func (f PairingFailure) WithReason(r hci.ErrorCode) PairingFailure {
	f.reason = r
	f.hasReason = true
	return f
}

func (f PairingFailure) ReceivedCode() (hci.EventCode, bool) {
	return f.receivedCode, f.hasReceivedCode
}

func (f PairingFailure) Reason() (hci.ErrorCode, bool) {
	return f.reason, f.hasReason
}

func (f PairingFailure) Error() string {
	var sb strings.Builder
	sb.WriteString(f.Message)
	if f.hasReceivedCode {
		fmt.Fprintf(&sb, ", received %v", f.receivedCode)
	}
	if f.hasReason {
		fmt.Fprintf(&sb, ", reason %v", f.reason)
	}
	return sb.String()
}

// CompletionCallback receives the outcome of a session.
type CompletionCallback func(address bredr.AddressWithType, result Result)

// once wraps a CompletionCallback that may only run one time.
type once struct {
	fn  CompletionCallback
	ran bool
}

func newOnce(fn CompletionCallback) *once {
	return &once{fn: fn}
}

func (o *once) run(a bredr.AddressWithType, r Result) {
	if o.ran {
		panic(fmt.Sprintf("pairing completion for %v invoked twice", a))
	}
	o.ran = true
	if o.fn != nil {
		o.fn(a, r)
	}
}
