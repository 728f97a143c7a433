package main

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bredr/hci/h4"
)

const dialTimeout = 5 * time.Second

func openTransport(t transportConfig) (io.ReadWriteCloser, error) {
	switch t.Type {
	case "socket":
		return openSocket(t.Device)
	case "uart":
		return h4.OpenSerial(h4.DefaultSerialOptions(t.Port, t.Baud))
	case "tcp":
		return h4.DialTCP(t.Addr, dialTimeout)
	}
	return nil, errors.Errorf("unknown transport %q", t.Type)
}
