//go:build !unix

package proxyarp

import (
	"errors"
	"net"
)

// isTemporary reports whether err is a receive error after which the socket
// remains usable.
func isTemporary(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func isLinkDown(err error) bool { return false }
