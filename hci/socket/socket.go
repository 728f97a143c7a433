//go:build linux

// Package socket opens an HCI User Channel on Linux. The channel hands out
// whole packets, so it can back a controller.Controller directly.
package socket

import (
	"fmt"
	"io"
	"sync"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/rigado/bredr"
	"golang.org/x/sys/unix"
)

func ioR(t, nr, size uintptr) uintptr {
	return (2 << 30) | (t << 8) | nr | (size << 16)
}

func ioW(t, nr, size uintptr) uintptr {
	return (1 << 30) | (t << 8) | nr | (size << 16)
}

func ioctl(fd, op, arg uintptr) error {
	if _, _, ep := unix.Syscall(unix.SYS_IOCTL, fd, op, arg); ep != 0 {
		return ep
	}
	return nil
}

const (
	ioctlSize      = 4
	hciMaxDevices  = 16
	typHCI         = 72 // 'H'
	readTimeout    = 1000
	unixPollErrors = int16(unix.POLLHUP | unix.POLLNVAL | unix.POLLERR)
	unixPollDataIn = int16(unix.POLLIN)

	openRetry = 60 * time.Second
)

var (
	hciDownDevice    = ioW(typHCI, 202, ioctlSize) // HCIDEVDOWN
	hciGetDeviceList = ioR(typHCI, 210, ioctlSize) // HCIGETDEVLIST
)

type devListRequest struct {
	devNum     uint16
	devRequest [hciMaxDevices]struct {
		id  uint16
		opt uint32
	}
}

// Socket implements a HCI User Channel as ReadWriteCloser.
type Socket struct {
	fd     int
	id     int
	logger bredr.Logger
	rmu    sync.Mutex
	wmu    sync.Mutex
	done   chan struct{}
	cmu    sync.Mutex
}

// NewSocket returns a HCI User Channel of specified device id.
// If id is -1, the first available HCI device is returned.
func NewSocket(id int) (*Socket, error) {
	if id != -1 {
		to := time.Now().Add(openRetry)
		var err error
		for time.Now().Before(to) {
			var s *Socket
			if s, err = open(id); err == nil {
				return s, nil
			}
			<-time.After(time.Second)
		}
		return nil, err
	}

	ids, err := devices()
	if err != nil {
		return nil, err
	}

	var msg string
	for _, id := range ids {
		s, err := open(id)
		if err == nil {
			return s, nil
		}
		msg = msg + fmt.Sprintf("(hci%d: %s)", id, err)
	}
	return nil, errors.Errorf("no devices available: %s", msg)
}

// devices lists the HCI device ids known to the kernel.
func devices() ([]int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(err, "can't create socket")
	}
	defer unix.Close(fd)

	req := devListRequest{devNum: hciMaxDevices}
	if err := ioctl(uintptr(fd), hciGetDeviceList, uintptr(unsafe.Pointer(&req))); err != nil {
		return nil, errors.Wrap(err, "can't get device list")
	}

	n := int(req.devNum)
	if n > hciMaxDevices {
		n = hciMaxDevices
	}
	ids := make([]int, 0, n)
	for _, d := range req.devRequest[:n] {
		ids = append(ids, int(d.id))
	}
	return ids, nil
}

func open(id int) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(err, "can't create socket")
	}
	if err := bind(fd, id); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Socket{
		fd:     fd,
		id:     id,
		logger: bredr.GetLogger().ChildLogger(map[string]interface{}{"hci": id}),
		done:   make(chan struct{}),
	}, nil
}

func bind(fd, id int) error {
	// HCI User Channel requires exclusive access to the device.
	// The device has to be down at the time of binding.
	if err := ioctl(uintptr(fd), hciDownDevice, uintptr(id)); err != nil {
		return errors.Wrap(err, "can't down device")
	}

	sa := unix.SockaddrHCI{Dev: uint16(id), Channel: unix.HCI_CHANNEL_USER}
	if err := unix.Bind(fd, &sa); err != nil {
		return errors.Wrap(err, "can't bind socket to hci user channel")
	}

	// drop whatever the controller had queued before we took it over
	ready, err := poll(fd, 20)
	if err != nil {
		return err
	}
	if ready {
		b := make([]byte, 2048)
		unix.Read(fd, b)
	}
	return nil
}

// poll waits up to timeout milliseconds for data on fd.
func poll(fd int, timeout int) (bool, error) {
	// dont need to add unixPollErrors, they are always returned
	pfds := []unix.PollFd{{Fd: int32(fd), Events: unixPollDataIn}}
	if _, err := unix.Poll(pfds, timeout); err != nil && err != unix.EINTR {
		return false, errors.Wrap(err, "can't poll hci socket")
	}

	evts := pfds[0].Revents
	switch {
	case evts&unixPollErrors != 0:
		return false, errors.Wrapf(io.EOF, "poll events 0x%04x", evts)
	case evts&unixPollDataIn != 0:
		return true, nil
	}
	return false, nil
}

// DeviceID is the index of the bound controller.
func (s *Socket) DeviceID() int {
	return s.id
}

// Read returns one packet, or 0 and no error after a second without data.
func (s *Socket) Read(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}

	s.rmu.Lock()
	defer s.rmu.Unlock()

	ready, err := poll(s.fd, readTimeout)
	switch {
	case err != nil:
		if s.isOpen() {
			s.logger.Errorf("hci socket error: %v", err)
		}
		return 0, io.EOF
	case !ready:
		return 0, nil
	}

	n, err := unix.Read(s.fd, p)

	// check if we are still open since the read takes a while
	if !s.isOpen() {
		return 0, io.EOF
	}
	return n, errors.Wrap(err, "can't read hci socket")
}

func (s *Socket) Write(p []byte) (int, error) {
	if !s.isOpen() {
		return 0, io.EOF
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	n, err := unix.Write(s.fd, p)
	return n, errors.Wrap(err, "can't write hci socket")
}

func (s *Socket) Close() error {
	s.cmu.Lock()
	defer s.cmu.Unlock()

	select {
	case <-s.done:
		return nil

	default:
		close(s.done)
		s.logger.Debug("closing hci socket")
		s.rmu.Lock()
		err := unix.Close(s.fd)
		s.rmu.Unlock()

		return errors.Wrap(err, "can't close hci socket")
	}
}

func (s *Socket) isOpen() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
