//go:build windows
// +build windows

package runtcp

import (
	"errors"
	"syscall"
)

// wsaeaddrinuse is the Windows socket error for an occupied address.
// The portable syscall.EADDRINUSE constant does not match it.
const wsaeaddrinuse = syscall.Errno(10048)

// isAddrInUse reports whether a bind failed because another listener
// already occupies the address.
func isAddrInUse(err error) bool {
	return errors.Is(err, wsaeaddrinuse) || errors.Is(err, syscall.EADDRINUSE)
}
