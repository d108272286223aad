package runtcp

import (
	"context"
	"fmt"
	"net"

	"github.com/asecurityteam/runhttp"
)

// Logger is an alias for the chosen project logging library
// which is, currently, logevent. All references in the project
// should be to this name rather than logevent directly.
type Logger = runhttp.Logger

// LogFn extracts a logger from the context.
type LogFn = runhttp.LogFn

// Stat is an alias for the chosen project metrics library
// which is, currently, xstats. All references in the project
// should be to this name rather than xstats directly.
type Stat = runhttp.Stat

// StatFn extracts a metrics client from the context.
type StatFn = runhttp.StatFn

// ConnHandler processes a single accepted connection. Implementations
// own the connection for the duration of the call but must not close
// the listener that produced it. The context is canceled when the
// server begins stopping and should be used to abandon blocked reads.
type ConnHandler interface {
	// Handle reads from and writes to the connection until the peer
	// disconnects, the context is canceled, or an unrecoverable error
	// occurs. The server closes the connection after Handle returns.
	Handle(ctx context.Context, conn net.Conn) error
}

// ConnHandlerFunc adapts a plain function to the ConnHandler interface.
type ConnHandlerFunc func(ctx context.Context, conn net.Conn) error

// Handle calls the wrapped function.
func (f ConnHandlerFunc) Handle(ctx context.Context, conn net.Conn) error {
	return f(ctx, conn)
}

// Fetcher is a pluggable component that enables different loading
// strategies for connection handlers.
type Fetcher interface {
	// Fetch uses some implementation of a loading strategy to fetch
	// the ConnHandler with the given name. If a matching handler
	// cannot be found then this component must emit a NotFoundError.
	Fetch(ctx context.Context, name string) (ConnHandler, error)
}

// NotFoundError represents a failed lookup for a resource.
type NotFoundError struct {
	// ID is the key used when looking for the resource.
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("resource (%s) not found", e.ID)
}

// PortUnavailableError is emitted when a concrete port was requested
// and another listener already occupies it. Requests for port zero
// never produce this error because the OS only hands out free ports.
type PortUnavailableError struct {
	// Host is the host component of the requested bind address.
	Host string
	// Port is the concrete port that was already bound.
	Port int
}

func (e PortUnavailableError) Error() string {
	return fmt.Sprintf("port (%d) on host (%s) is already bound by another listener", e.Port, e.Host)
}

// BindError represents any OS-level bind failure other than an
// occupied port, such as permission errors on privileged ports or an
// unresolvable host.
type BindError struct {
	// Address is the host:port string handed to the OS.
	Address string
	// Cause is the underlying error returned by the OS.
	Cause error
}

func (e BindError) Error() string {
	return fmt.Sprintf("failed to bind listener on (%s): %v", e.Address, e.Cause)
}

// Unwrap exposes the underlying OS error.
func (e BindError) Unwrap() error {
	return e.Cause
}

// InvalidStateError is emitted when a lifecycle method is called out
// of order, such as stopping a server that was never started.
type InvalidStateError struct {
	// Op is the lifecycle method that was rejected.
	Op string
	// State is the state the server was in at the time of the call.
	State string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("operation (%s) is not valid in state (%s)", e.Op, e.State)
}
