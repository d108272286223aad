package runtcp

import (
	"encoding/json"
	"net"
	"strconv"
	"sync"
	"time"
)

// Client sends Message frames to an echo server and reads the replies.
// Construction performs no network I/O. The first Send dials the
// target and the connection is reused for subsequent Sends until
// Close is called.
//
// Client is safe for sequential use only. Concurrent Sends are
// serialized by an internal lock so replies cannot interleave.
type Client struct {
	host    string
	port    int
	timeout time.Duration

	mut    sync.Mutex
	conn   net.Conn
	enc    *json.Encoder
	dec    *json.Decoder
	closed bool
}

// NewClient configures a client for the given target. The timeout
// bounds both the dial and each individual request round trip. A zero
// timeout disables deadlines entirely.
func NewClient(host string, port int, timeout time.Duration) *Client {
	return &Client{host: host, port: port, timeout: timeout}
}

// Addr returns the target in host:port form.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// Send writes one Message frame and blocks for the echoed reply. The
// connection is established on the first call.
func (c *Client) Send(content string) (string, error) {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.closed {
		return "", InvalidStateError{Op: "send", State: "closed"}
	}
	if c.conn == nil {
		conn, err := net.DialTimeout("tcp", c.Addr(), c.timeout)
		if err != nil {
			return "", err
		}
		c.conn = conn
		c.enc = json.NewEncoder(conn)
		c.dec = json.NewDecoder(conn)
	}
	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return "", err
		}
	}
	if err := c.enc.Encode(Message{Content: content}); err != nil {
		return "", err
	}
	var reply Message
	if err := c.dec.Decode(&reply); err != nil {
		return "", err
	}
	return reply.Content, nil
}

// Close tears down the connection if one was established. It is safe
// to call multiple times.
func (c *Client) Close() error {
	c.mut.Lock()
	defer c.mut.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
