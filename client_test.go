package runtcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, handler ConnHandler) *Server {
	t.Helper()
	l, err := Listen("127.0.0.1", PortAny)
	require.NoError(t, err)
	srv := NewServer(l, handler, nil)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func TestClientConstructionPerformsNoIO(t *testing.T) {
	// Nothing is listening on the target. Construction must still
	// succeed because no I/O happens until the first Send.
	c := NewClient("127.0.0.1", 1, time.Second)
	assert.Equal(t, "127.0.0.1:1", c.Addr())
	require.NoError(t, c.Close())
}

func TestClientEchoesOverPersistentConnection(t *testing.T) {
	srv := startServer(t, &EchoHandler{})
	c := NewClient("127.0.0.1", srv.Port(), 2*time.Second)
	defer c.Close()

	for _, content := range []string{"first", "second", "third"} {
		reply, err := c.Send(content)
		require.NoError(t, err)
		assert.Equal(t, content, reply)
	}
}

func TestClientSendAfterClose(t *testing.T) {
	c := NewClient("127.0.0.1", 1, time.Second)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.Send("ping")
	var stateErr InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "send", stateErr.Op)
}

func TestClientTimesOutWithoutReply(t *testing.T) {
	srv := startServer(t, DiscardHandler{})
	c := NewClient("127.0.0.1", srv.Port(), 200*time.Millisecond)
	defer c.Close()

	_, err := c.Send("ping")
	require.Error(t, err)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestClientDialFailure(t *testing.T) {
	l, err := Listen("127.0.0.1", PortAny)
	require.NoError(t, err)
	port := l.Port()
	require.NoError(t, l.Close())

	c := NewClient("127.0.0.1", port, time.Second)
	defer c.Close()
	_, err = c.Send("ping")
	require.Error(t, err)
}
