//go:build !linux

package main

import (
	"io"

	"github.com/pkg/errors"
)

func openSocket(id int) (io.ReadWriteCloser, error) {
	return nil, errors.New("hci user channel is only available on linux")
}
