package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rigado/bredr"
	"github.com/rigado/bredr/security/pairing"
)

// termUI shows pairing prompts on a terminal and answers them with the
// lines typed by the user.
type termUI struct {
	cb     pairing.UICallbacks
	prompt bool

	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func newTermUI(in io.Reader, out io.Writer, prompt bool) *termUI {
	return &termUI{in: bufio.NewReader(in), out: out, prompt: prompt}
}

func (u *termUI) printf(format string, args ...interface{}) {
	fmt.Fprintf(u.out, format, args...)
}

// ask reads the answer off the handler goroutine.
func (u *termUI) ask(f func(line string)) {
	go func() {
		u.mu.Lock()
		line, err := u.in.ReadString('\n')
		u.mu.Unlock()
		if err != nil && line == "" {
			return
		}
		f(strings.TrimSpace(line))
	}()
}

func yes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes":
		return true
	}
	return false
}

func (u *termUI) DisplayYesNoDialog(a bredr.AddressWithType) {
	if !u.prompt {
		u.printf("pairing with %v\n", a)
		return
	}
	u.printf("pair with %v? [y/n] ", a)
	u.ask(func(s string) { u.cb.OnPairingPromptAccepted(a, yes(s)) })
}

func (u *termUI) DisplayConfirmValue(a bredr.AddressWithType, v uint32) {
	if !u.prompt {
		u.printf("%v: %06d\n", a, v)
		return
	}
	u.printf("%v: does %06d match? [y/n] ", a, v)
	u.ask(func(s string) { u.cb.OnConfirmYesNo(a, yes(s)) })
}

func (u *termUI) DisplayPasskey(a bredr.AddressWithType, v uint32) {
	u.printf("%v: enter %06d on the device\n", a, v)
}

func (u *termUI) DisplayEnterPasskeyDialog(a bredr.AddressWithType) {
	u.printf("%v: passkey: ", a)
	u.ask(func(s string) {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			u.printf("invalid passkey %q\n", s)
			u.cb.OnConfirmYesNo(a, false)
			return
		}
		u.cb.OnPasskeyEntry(a, uint32(v))
	})
}

func (u *termUI) Cancel(a bredr.AddressWithType) {
	u.printf("\n%v: pairing cancelled\n", a)
}
