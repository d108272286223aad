package runtcp

import (
	"context"
	"testing"

	"github.com/asecurityteam/settings/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Rather than mock out the settings.Source, it ends up being easier
// to manage and slightly more realistic to use the ENV source but
// populated with a static ENV list. These are exactly the variables
// that users would set when running the system.
func testSource(t *testing.T, env []string) settings.Source {
	t.Helper()
	source, err := settings.NewEnvSource(env)
	require.NoError(t, err)
	return source
}

func TestNewFromEnvironment(t *testing.T) {
	source := testSource(t, []string{
		"RUNTCP_SERVER_LISTENER_HOST=127.0.0.1",
		"RUNTCP_SERVER_LISTENER_PORT=0",
		"RUNTCP_SERVER_LOGGER_OUTPUT=NULL",
		"RUNTCP_SERVER_STATS_OUTPUT=NULL",
	})
	fetcher := &StaticFetcher{Handlers: map[string]ConnHandler{
		"echo": &EchoHandler{},
	}}

	srv, err := New(context.Background(), source, fetcher)
	require.NoError(t, err)
	assert.Greater(t, srv.Port(), 0)

	require.NoError(t, srv.Start(context.Background()))
	require.NoError(t, srv.Stop())
}

func TestNewRejectsUnknownHandler(t *testing.T) {
	source := testSource(t, []string{
		"RUNTCP_SERVER_LISTENER_HOST=127.0.0.1",
		"RUNTCP_SERVER_LISTENER_PORT=0",
		"RUNTCP_SERVER_LOGGER_OUTPUT=NULL",
		"RUNTCP_SERVER_STATS_OUTPUT=NULL",
		"RUNTCP_SERVER_HANDLER=missing",
	})
	fetcher := &StaticFetcher{Handlers: map[string]ConnHandler{
		"echo": &EchoHandler{},
	}}

	_, err := New(context.Background(), source, fetcher)
	var notFound NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
}

func TestLoggerFromConfigRejectsUnknownOutput(t *testing.T) {
	_, err := loggerFromConfig(&LoggerConfig{Output: "PAPER"})
	require.Error(t, err)
}

func TestStatFromConfigDefaultsToNull(t *testing.T) {
	stat, err := statFromConfig(&StatsConfig{})
	require.NoError(t, err)
	assert.IsType(t, nopStat{}, stat)
}

func TestHelp(t *testing.T) {
	assert.NotEmpty(t, Help())
}
