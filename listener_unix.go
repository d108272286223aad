//go:build !windows
// +build !windows

package runtcp

import (
	"errors"
	"syscall"
)

// isAddrInUse reports whether a bind failed because another listener
// already occupies the address.
func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
