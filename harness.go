package runtcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultHarnessTimeout bounds client round trips made inside a
// harness run unless the harness specifies its own value.
const DefaultHarnessTimeout = 5 * time.Second

type teardownFailed struct {
	Message string `logevent:"message,default=teardown-failed"`
	Reason  string `logevent:"reason"`
}

// Harness starts a server, wires a client to the port the OS reports,
// runs a caller-supplied test body, and tears everything down. The
// zero value runs an EchoHandler on an OS-assigned loopback port,
// which is the conflict-free configuration for test suites that run
// many harnesses concurrently.
type Harness struct {
	// Host to bind on. The default value is 127.0.0.1.
	Host string
	// Port to bind on. The default value is PortAny, which asks the
	// OS for any available port. Set a concrete value only when a
	// single harness owns the port for the duration of the run.
	Port int
	// Handler served to accepted connections. The default value is
	// an EchoHandler.
	Handler ConnHandler
	// Timeout applied to the client handed to the body. The default
	// value is DefaultHarnessTimeout.
	Timeout time.Duration
	// Logger receives lifecycle events. The default value discards
	// all events.
	Logger Logger
	// Stat receives lifecycle metrics. The default value discards
	// all metrics.
	Stat Stat
	// NewClient builds the client handed to the body. It exists so
	// tests can observe or replace client construction. The default
	// value is the package NewClient constructor. The harness only
	// invokes it after the server has reported its concrete port.
	NewClient func(host string, port int, timeout time.Duration) *Client
}

func applyHarnessDefaults(h *Harness) *Harness {
	out := *h
	if out.Host == "" {
		out.Host = "127.0.0.1"
	}
	if out.Handler == nil {
		out.Handler = &EchoHandler{}
	}
	if out.Timeout == 0 {
		out.Timeout = DefaultHarnessTimeout
	}
	if out.Logger == nil {
		out.Logger = nopLogger{}
	}
	if out.Stat == nil {
		out.Stat = nopStat{}
	}
	if out.NewClient == nil {
		out.NewClient = NewClient
	}
	return &out
}

// Run executes one harness cycle: acquire a listener, start the
// server, construct the client against the reported port, invoke the
// body, then stop the server and join its goroutines. Teardown always
// runs, whether or not the body fails.
//
// A bind failure aborts the run before any client activity so the
// caller can attribute it to binding rather than to the body. When
// both the body and teardown fail, the body error wins and the
// teardown error is logged.
func (h *Harness) Run(ctx context.Context, body func(ctx context.Context, client *Client) error) (err error) {
	conf := applyHarnessDefaults(h)
	var l *Listener
	l, err = Listen(conf.Host, conf.Port)
	if err != nil {
		return err
	}
	srv := NewServer(l, conf.Handler, &ServerConfig{Logger: conf.Logger, Stat: conf.Stat})
	if startErr := srv.Start(ctx); startErr != nil {
		_ = l.Close()
		return startErr
	}
	// The server port is read back before the client exists. A client
	// can therefore never attempt a connection that predates the
	// listening socket.
	client := conf.NewClient(conf.Host, srv.Port(), conf.Timeout)
	// Teardown runs in a defer so a body that panics, or that exits
	// the goroutine the way a failed require assertion does, still
	// releases the port and joins the accept loop.
	defer func() {
		_ = client.Close()
		stopErr := srv.Stop()
		if stopErr != nil {
			conf.Logger.Error(teardownFailed{Reason: stopErr.Error()})
		}
		if err == nil {
			err = stopErr
		}
	}()
	return body(ctx, client)
}

// HTTPHarness is the Harness analog for services that speak HTTP. It
// serves the configured http.Handler on an OS-assigned port and hands
// the body a ready base URL plus a client with the harness timeout.
type HTTPHarness struct {
	// Host to bind on. The default value is 127.0.0.1.
	Host string
	// Port to bind on. The default value is PortAny.
	Port int
	// Handler served over HTTP. There is no default for this value.
	Handler http.Handler
	// Timeout applied to the client handed to the body. The default
	// value is DefaultHarnessTimeout.
	Timeout time.Duration
	// Logger receives lifecycle events. The default value discards
	// all events.
	Logger Logger
}

// Run executes one HTTP harness cycle with the same ordering and
// teardown guarantees as Harness.Run.
func (h *HTTPHarness) Run(ctx context.Context, body func(ctx context.Context, client *http.Client, baseURL string) error) (err error) {
	host := h.Host
	if host == "" {
		host = "127.0.0.1"
	}
	timeout := h.Timeout
	if timeout == 0 {
		timeout = DefaultHarnessTimeout
	}
	logger := h.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	var l *Listener
	l, err = Listen(host, h.Port)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: h.Handler}
	exit := make(chan error, 1)
	go func() {
		exit <- srv.Serve(l)
	}()
	// Teardown runs in a defer so a body that panics or exits the
	// goroutine still releases the port and joins the serve goroutine.
	defer func() {
		stopErr := srv.Shutdown(context.Background())
		if serveErr := <-exit; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) && stopErr == nil {
			stopErr = serveErr
		}
		if stopErr != nil {
			logger.Error(teardownFailed{Reason: stopErr.Error()})
		}
		if err == nil {
			err = stopErr
		}
	}()
	baseURL := fmt.Sprintf("http://%s", l.Addr().String())
	return body(ctx, &http.Client{Timeout: timeout}, baseURL)
}
