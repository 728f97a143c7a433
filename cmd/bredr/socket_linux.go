package main

import (
	"io"

	"github.com/rigado/bredr/hci/socket"
)

func openSocket(id int) (io.ReadWriteCloser, error) {
	return socket.NewSocket(id)
}
