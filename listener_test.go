package runtcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenAnyPortAssignsConcretePort(t *testing.T) {
	l, err := Listen("127.0.0.1", PortAny)
	require.NoError(t, err)
	defer l.Close()

	assert.Greater(t, l.Port(), 0)
	assert.Equal(t, "127.0.0.1", l.Host())
}

func TestListenOccupiedPort(t *testing.T) {
	l, err := Listen("127.0.0.1", PortAny)
	require.NoError(t, err)
	defer l.Close()

	_, err = Listen("127.0.0.1", l.Port())
	var unavailable PortUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, l.Port(), unavailable.Port)
	assert.Equal(t, "127.0.0.1", unavailable.Host)
}

func TestListenBindFailure(t *testing.T) {
	// TEST-NET-3 range. Not assigned to any local interface so the
	// bind fails with something other than an occupied port.
	_, err := Listen("203.0.113.1", PortAny)
	var bindErr BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Error(t, bindErr.Unwrap())
}

func TestListenPortReleasedAfterClose(t *testing.T) {
	l, err := Listen("127.0.0.1", PortAny)
	require.NoError(t, err)
	port := l.Port()
	require.NoError(t, l.Close())

	l2, err := Listen("127.0.0.1", port)
	require.NoError(t, err)
	_ = l2.Close()
}
