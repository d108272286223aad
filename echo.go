package runtcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"

	"github.com/asecurityteam/runhttp"
)

// Message is the wire frame exchanged with the echo service. Frames
// are JSON objects delimited by the encoder's trailing newline.
type Message struct {
	Content string `json:"content"`
}

type messageReceived struct {
	Message string `logevent:"message,default=message-received"`
	Content string `logevent:"content"`
}

type clientDisconnected struct {
	Message string `logevent:"message,default=client-disconnected"`
}

type decodeFailed struct {
	Message string `logevent:"message,default=decode-failed"`
	Reason  string `logevent:"reason"`
}

// EchoHandler reads Message frames in a loop and writes each one back
// unchanged until the peer disconnects. A single connection may carry
// any number of messages.
type EchoHandler struct {
	// LogFn is used to extract the request logger from the connection
	// context. The default value is runhttp.LoggerFromContext.
	LogFn LogFn
	// StatFn is used to extract the stat client from the connection
	// context. The default value is runhttp.StatFromContext.
	StatFn StatFn
}

func (h *EchoHandler) logFn() LogFn {
	if h.LogFn != nil {
		return h.LogFn
	}
	return runhttp.LoggerFromContext
}

func (h *EchoHandler) statFn() StatFn {
	if h.StatFn != nil {
		return h.StatFn
	}
	return runhttp.StatFromContext
}

// Handle implements ConnHandler. A clean disconnect returns nil. A
// frame that cannot be decoded terminates the connection with the
// decoding error because the stream offset is no longer trustworthy
// after a partial parse.
func (h *EchoHandler) Handle(ctx context.Context, conn net.Conn) error {
	logger := h.logFn()(ctx)
	stat := h.statFn()(ctx)
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var msg Message
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				logger.Info(clientDisconnected{})
				return nil
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Error(decodeFailed{Reason: err.Error()})
			stat.Count("echo.decode_error", 1)
			return err
		}
		logger.Info(messageReceived{Content: msg.Content})
		stat.Count("echo.message", 1)
		if err := enc.Encode(msg); err != nil {
			return err
		}
	}
}

// DiscardHandler accepts a connection and drains everything the peer
// sends without ever replying. It is the mock stand-in used by the
// mock build modes and is useful in tests that exercise client
// timeouts.
type DiscardHandler struct{}

// Handle implements ConnHandler by discarding all input.
func (DiscardHandler) Handle(ctx context.Context, conn net.Conn) error {
	_, err := io.Copy(io.Discard, conn)
	if err != nil && (ctx.Err() != nil || errors.Is(err, net.ErrClosed)) {
		return nil
	}
	return err
}
