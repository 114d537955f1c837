// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


// Package stream moves calibrated sample batches from the shared buffer
// to the remote endpoint over a persistent websocket.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned by Send outside the Connected state.
var ErrNotConnected = errors.New("stream: not connected")

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	// DefaultMinBackoff is the cooldown before the first reconnect attempt.
	DefaultMinBackoff = 250 * time.Millisecond
	// DefaultMaxBackoff caps the exponential reconnect cooldown.
	DefaultMaxBackoff = 5 * time.Second

	handshakeTimeout = 5 * time.Second
	writeTimeout     = 5 * time.Second
)

// Conn owns the websocket to the remote endpoint. It is not safe for
// concurrent use: the publisher goroutine is its sole owner, exactly as
// the sampler is the buffer's sole producer.
type Conn struct {
	endpoint string
	dialer   *websocket.Dialer

	ws    *websocket.Conn
	state State

	minBackoff time.Duration
	maxBackoff time.Duration
	nextDelay  time.Duration
}

// NewConn prepares a manager for the given ws:// endpoint. Nothing is
// dialed until Connect.
func NewConn(endpoint string, minBackoff, maxBackoff time.Duration) *Conn {
	if minBackoff <= 0 {
		minBackoff = DefaultMinBackoff
	}
	if maxBackoff < minBackoff {
		maxBackoff = DefaultMaxBackoff
	}
	return &Conn{
		endpoint:   endpoint,
		dialer:     &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		state:      StateDisconnected,
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
		nextDelay:  minBackoff,
	}
}

// State returns the current lifecycle state.
func (c *Conn) State() State { return c.state }

// Connect performs a single blocking connection attempt. On failure the
// manager stays Disconnected and the error is returned; there is no
// retry here, that is Reconnect's job.
func (c *Conn) Connect() error {
	c.state = StateConnecting

	ws, _, err := c.dialer.Dial(c.endpoint, nil)
	if err != nil {
		c.state = StateDisconnected
		return fmt.Errorf("stream: connect %s: %w", c.endpoint, err)
	}

	c.ws = ws
	c.state = StateConnected
	c.nextDelay = c.minBackoff
	return nil
}

// Send transmits one text frame. Valid only when Connected; any transport
// failure tears the socket down, transitions to Disconnected and
// propagates the error so the caller can trigger Reconnect.
func (c *Conn) Send(payload []byte) error {
	if c.state != StateConnected {
		return ErrNotConnected
	}

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.teardown()
		return fmt.Errorf("stream: send: %w", err)
	}
	return nil
}

// Reconnect waits out the current cooldown, then makes one connection
// attempt. Each failure doubles the cooldown up to the configured cap; a
// success resets it. The wait observes ctx so shutdown is not delayed by
// the backoff timer.
func (c *Conn) Reconnect(ctx context.Context) error {
	delay := c.nextDelay
	log.Printf("stream: reconnecting to %s in %v", c.endpoint, delay)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
	}

	if err := c.Connect(); err != nil {
		c.nextDelay *= 2
		if c.nextDelay > c.maxBackoff {
			c.nextDelay = c.maxBackoff
		}
		return err
	}

	log.Printf("stream: reconnected to %s", c.endpoint)
	return nil
}

// Close tears the socket down and returns to Disconnected.
func (c *Conn) Close() error {
	if c.state != StateConnected {
		return nil
	}
	err := c.ws.Close()
	c.teardown()
	return err
}

func (c *Conn) teardown() {
	if c.ws != nil {
		c.ws.Close()
		c.ws = nil
	}
	c.state = StateDisconnected
}
