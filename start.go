package runtcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/asecurityteam/runhttp"
	"github.com/asecurityteam/settings/v2"
)

const (
	// BuildModeTCP is the standard mode of running the managed TCP
	// server with the configured connection handler.
	BuildModeTCP = "tcp"
	// BuildModeTCPMock runs the TCP server but with mocked versions
	// of the connection handlers loaded. Connections are accepted and
	// drained without any protocol behavior.
	BuildModeTCPMock = "tcp_mock"
	// BuildModeHTTP runs the HTTP flavor of the echo API using the
	// runhttp runtime.
	BuildModeHTTP = "http"
)

var (
	// BuildMode determines the behavior of the Start method. There
	// are several ways to use this value. The suggested way is through
	// build variables by adding `-ldflags "-X github.com/asecurityteam/runtcp.BuildMode=<value>"`
	// to `go build` or `go run` commands. If you want to use environment variables
	// instead then you can set this variable in code before calling Start
	// like `runtcp.BuildMode=os.Getenv("MYENVVAR")`.
	//
	// Alternatively, the StartMode() method may be used if you prefer to pass in
	// parameters via code rather than toggling the global setting.
	BuildMode = BuildModeTCP
)

// Start runs the service in the mode selected by BuildMode and blocks
// until the context is canceled, a termination signal arrives, or the
// runtime fails.
func Start(ctx context.Context, s settings.Source, f Fetcher) error {
	return StartMode(ctx, s, f, BuildMode)
}

// StartMode works just like Start but allows for explicit passing of
// the build mode.
func StartMode(ctx context.Context, s settings.Source, f Fetcher, mode string) error {
	switch {
	case strings.EqualFold(mode, BuildModeTCP):
		return StartTCP(ctx, s, f)
	case strings.EqualFold(mode, BuildModeTCPMock):
		return StartTCPMock(ctx, s, f)
	case strings.EqualFold(mode, BuildModeHTTP):
		return StartHTTP(ctx, s)
	default:
		return fmt.Errorf("unknown build mode %s", mode)
	}
}

// StartTCP runs the managed TCP server until the context is canceled
// or the process receives an interrupt or termination signal, then
// stops the server and joins its goroutines.
func StartTCP(ctx context.Context, s settings.Source, f Fetcher) error {
	srv, err := New(ctx, s, f)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	select {
	case <-ctx.Done():
	case <-sig:
	}
	return srv.Stop()
}

// StartTCPMock runs the TCP server with mocked out handlers.
func StartTCPMock(ctx context.Context, s settings.Source, f Fetcher) error {
	return StartTCP(ctx, s, &MockingFetcher{Fetcher: f})
}

// StartHTTP runs the HTTP echo API on the runhttp runtime. The
// listening address, logging, and stats are all driven by the runhttp
// configuration under the RUNTCP prefix.
func StartHTTP(ctx context.Context, s settings.Source) error {
	router := NewRouter(&RouterConfig{})
	rtC := runhttp.NewComponent().WithHandler(router)
	rt := new(runhttp.Runtime)
	err := settings.NewComponent(
		ctx,
		&settings.PrefixSource{Source: s, Prefix: []string{"runtcp"}},
		rtC,
		rt,
	)
	if err != nil {
		return err
	}
	return rt.Run()
}
