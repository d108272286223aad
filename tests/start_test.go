//go:build integration
// +build integration

package tests

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/asecurityteam/runtcp"
	"github.com/asecurityteam/settings/v2"
)

func TestStart(t *testing.T) {
	ctx := context.Background()
	fetcher := &runtcp.StaticFetcher{Handlers: map[string]runtcp.ConnHandler{
		"echo":    &runtcp.EchoHandler{},
		"discard": runtcp.DiscardHandler{},
	}}
	// These tests are not safe to run in parallel because shutdown is
	// driven by a process-wide signal. A mutex ensures only one test
	// is running concurrently. Ordering of the tests does not matter.
	mut := &sync.Mutex{}

	// makeEchoCall attempts an echo round trip until either a success
	// case is found or the loop times out. This is to account for
	// arbitrary start-up time of the server in the background.
	var makeEchoCall = func(t *testing.T, port string) error {
		p, _ := strconv.Atoi(port)
		stop := time.Now().Add(5 * time.Second)
		for time.Now().Before(stop) {
			time.Sleep(100 * time.Millisecond)
			client := runtcp.NewClient("localhost", p, time.Second)
			reply, err := client.Send("ping")
			_ = client.Close()
			if err != nil {
				t.Log(err.Error())
				continue
			}
			if reply != "ping" {
				t.Logf("unexpected reply %s", reply)
				continue
			}
			return nil
		}
		return errors.New("failed to execute echo round trip")
	}

	// makeDialCall only verifies connectivity. The mock build mode
	// drains input without replying so a round trip would never
	// complete.
	var makeDialCall = func(t *testing.T, port string) error {
		stop := time.Now().Add(5 * time.Second)
		for time.Now().Before(stop) {
			time.Sleep(100 * time.Millisecond)
			conn, err := net.DialTimeout("tcp", "localhost:"+port, time.Second)
			if err != nil {
				t.Log(err.Error())
				continue
			}
			_ = conn.Close()
			return nil
		}
		return errors.New("failed to connect")
	}

	// makeHTTPCall polls the healthcheck exposed by the HTTP mode.
	var makeHTTPCall = func(t *testing.T, port string) error {
		stop := time.Now().Add(5 * time.Second)
		for time.Now().Before(stop) {
			time.Sleep(100 * time.Millisecond)
			resp, err := http.DefaultClient.Get(
				fmt.Sprintf("http://localhost:%s/healthcheck", port),
			)
			if err != nil {
				t.Log(err.Error())
				continue
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Log(resp.StatusCode)
				continue
			}
			return nil
		}
		return errors.New("failed to reach healthcheck")
	}

	for _, testCase := range []struct {
		Mode    string
		Execute func(t *testing.T, port string) error
	}{
		{
			Mode:    runtcp.BuildModeTCP,
			Execute: makeEchoCall,
		},
		{
			Mode:    runtcp.BuildModeTCPMock,
			Execute: makeDialCall,
		},
		{
			Mode:    runtcp.BuildModeHTTP,
			Execute: makeHTTPCall,
		},
	} {
		t.Run(testCase.Mode, func(t *testing.T) {
			mut.Lock()
			defer mut.Unlock()

			port, err := getPort()
			require.NoError(t, err)

			source, err := settings.NewEnvSource([]string{
				"RUNTCP_SERVER_LISTENER_HOST=localhost",
				"RUNTCP_SERVER_LISTENER_PORT=" + port,
				"RUNTCP_SERVER_LOGGER_OUTPUT=NULL",
				"RUNTCP_SERVER_STATS_OUTPUT=NULL",
				"RUNTCP_RUNTIME_HTTPSERVER_ADDRESS=localhost:" + port,
				"RUNTCP_RUNTIME_LOGGER_OUTPUT=NULL",
				"RUNTCP_RUNTIME_STATS_OUTPUT=NULL",
			})
			require.Nil(t, err)

			exit := make(chan error)
			go func() {
				exit <- runtcp.StartMode(ctx, source, fetcher, testCase.Mode)
			}()
			require.NoError(t, testCase.Execute(t, port))
			// Both the TCP runtime and the runhttp runtime establish
			// signal handlers. Having the process signal itself
			// exercises the signal based shutdown behavior.
			proc, _ := os.FindProcess(os.Getpid())
			_ = proc.Signal(os.Interrupt)
			select {
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for exit")
			case err := <-exit:
				require.Nil(t, err)
			}
		})
	}
}
