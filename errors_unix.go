//go:build unix

package proxyarp

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"
)

// isTemporary reports whether err is a receive error after which the socket
// remains usable.
func isTemporary(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}

	for _, errno := range []unix.Errno{
		unix.EINTR,
		unix.EAGAIN,
		unix.ENOBUFS,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}

	return false
}

// isLinkDown reports whether err is the ENETDOWN a packet socket returns
// once when its interface goes down.  Removing the interface reports the
// same error, after which the socket never delivers another frame.
func isLinkDown(err error) bool {
	return errors.Is(err, unix.ENETDOWN)
}
