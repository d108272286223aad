// Package runtcp provides a managed TCP server runtime and a test
// harness built around OS-assigned port selection.
//
// The runtime half mirrors the shape of runhttp: a settings driven
// Component produces a Server that owns a listener, runs an accept
// loop on a background goroutine, and hands each connection to a
// ConnHandler with a logger and stat client installed in the context.
//
// The harness half exists for tests. A Harness binds to port zero so
// the OS picks a free port, starts the server, reads the concrete
// port back, and only then constructs the client it passes to the
// test body. That ordering removes the race where a client dials
// before anything is listening, and OS selection removes port
// conflicts between suites running concurrently. Static ports remain
// available through configuration for production deployments.
package runtcp
