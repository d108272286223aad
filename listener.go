package runtcp

import (
	"net"
	"strconv"
)

// PortAny is the sentinel port value that asks the operating system to
// select any available port from the ephemeral range. Binding with
// PortAny can never collide with another listener which makes it the
// right choice for test servers running concurrently.
const PortAny = 0

// Listener wraps an acquired TCP listener and records the concrete
// port the OS bound it to. The port is stable for the lifetime of the
// listener, including when the caller requested PortAny.
type Listener struct {
	net.Listener
	host string
	port int
}

// Listen binds a TCP listener on the given host. A port of PortAny
// defers port selection to the OS. A concrete port that is already
// occupied produces a PortUnavailableError. Any other bind failure
// produces a BindError wrapping the OS error.
//
// The port is reserved exclusively from the time Listen returns until
// the listener is closed.
func Listen(host string, port int) (*Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		if port != PortAny && isAddrInUse(err) {
			return nil, PortUnavailableError{Host: host, Port: port}
		}
		return nil, BindError{Address: addr, Cause: err}
	}
	return &Listener{
		Listener: l,
		host:     host,
		port:     l.Addr().(*net.TCPAddr).Port,
	}, nil
}

// Host returns the host component the listener was bound with.
func (l *Listener) Host() string {
	return l.host
}

// Port returns the concrete bound port. This is always a positive
// integer, even when the listener was acquired with PortAny.
func (l *Listener) Port() int {
	return l.port
}
