package security

import (
	"sync"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/security/pairing"
)

type listener struct {
	mu       sync.Mutex
	bonded   []bredr.AddressWithType
	unbonded []bredr.AddressWithType
	failed   []pairing.PairingFailure
	done     chan struct{}
}

func (l *listener) signal() {
	if l.done != nil {
		select {
		case l.done <- struct{}{}:
		default:
		}
	}
}

func (l *listener) OnDeviceBonded(a bredr.AddressWithType) {
	l.mu.Lock()
	l.bonded = append(l.bonded, a)
	l.mu.Unlock()
	l.signal()
}

func (l *listener) OnDeviceUnbonded(a bredr.AddressWithType) {
	l.mu.Lock()
	l.unbonded = append(l.unbonded, a)
	l.mu.Unlock()
	l.signal()
}

func (l *listener) OnDeviceBondFailed(a bredr.AddressWithType, f pairing.PairingFailure) {
	l.mu.Lock()
	l.failed = append(l.failed, f)
	l.mu.Unlock()
	l.signal()
}

func (l *listener) counts() (int, int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bonded), len(l.unbonded), len(l.failed)
}
