package h4

import (
	"io"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"github.com/rigado/bredr"
)

// DefaultSerialOptions is a typical 8N1 HCI UART setup.
func DefaultSerialOptions(port string, baud uint) serial.OpenOptions {
	return serial.OpenOptions{
		PortName:        port,
		BaudRate:        baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 0,
		// milliseconds
		InterCharacterTimeout: 100,
	}
}

// OpenSerial opens an H4 link on a serial port.
func OpenSerial(opts serial.OpenOptions) (io.ReadWriteCloser, error) {
	// force these
	opts.MinimumReadSize = 0
	if opts.InterCharacterTimeout == 0 {
		opts.InterCharacterTimeout = 100
	}

	logger := bredr.GetLogger().ChildLogger(map[string]interface{}{"module": "h4"})
	logger.Infof("opening %v at %v baud", opts.PortName, opts.BaudRate)
	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %v", opts.PortName)
	}

	// reset the controller and drop whatever it answers
	b := make([]byte, 2048)
	if _, err := sp.Write([]byte{1, 3, 12, 0}); err != nil {
		sp.Close()
		return nil, errors.Wrap(err, "can't reset controller")
	}
	<-time.After(time.Millisecond * 250)
	if _, err := sp.Read(b); err != nil && err != io.EOF {
		sp.Close()
		return nil, errors.Wrap(err, "can't flush serial port")
	}

	// a read that hits the inter character timeout returns nothing
	return newH4(sp, func(n int, err error) bool {
		return err == nil || err == io.EOF
	}), nil
}
