// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Bridge connection defaults
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultDialTimeout      = 15 * time.Second
)

// WebSocketConfig describes a serial-to-WebSocket bridge.
type WebSocketConfig struct {
	// URL of the bridge endpoint, ws:// or wss://
	URL string

	// Username and Password enable HTTP Basic auth when both are set
	Username string
	Password string

	// SkipTLSVerify disables certificate checks for wss://
	SkipTLSVerify bool

	// Timeout bounds waiting for reply bytes
	Timeout time.Duration
}

// WebSocket reaches the PSU through a bridge that relays binary WebSocket
// messages to and from the serial line.
type WebSocket struct {
	url     string
	timeout time.Duration
	dialer  websocket.Dialer
	headers http.Header
	maxLine int
}

// NewWebSocket validates cfg and creates a bridge transport. No connection
// is made until the first exchange.
func NewWebSocket(cfg WebSocketConfig) (*WebSocket, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: DefaultHandshakeTimeout,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: cfg.SkipTLSVerify,
		}
	}

	headers := http.Header{}
	if cfg.Username != "" && cfg.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	return &WebSocket{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		dialer:  dialer,
		headers: headers,
		maxLine: MaxLineSize,
	}, nil
}

// URL returns the bridge endpoint.
func (w *WebSocket) URL() string {
	return w.url
}

// Write dials the bridge, sends frame as one binary message and closes.
func (w *WebSocket) Write(frame []byte) error {
	conn, err := w.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	return w.write(conn, frame)
}

// WriteReadLine dials the bridge, sends frame and collects binary messages
// until a line terminator arrives or the timeout passes without data.
func (w *WebSocket) WriteReadLine(frame []byte) ([]byte, error) {
	conn, err := w.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := w.write(conn, frame); err != nil {
		return nil, err
	}

	lb := newLineBuffer(w.maxLine)
	for {
		if w.timeout > 0 {
			conn.SetReadDeadline(time.Now().Add(w.timeout))
		}

		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if isTimeout(err) || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return lb.line(), nil
			}
			return nil, &Error{Op: "read", Addr: w.url, Err: err}
		}

		// Only binary messages carry serial data
		if messageType != websocket.BinaryMessage {
			continue
		}

		if lb.add(data) {
			return lb.line(), nil
		}
	}
}

func (w *WebSocket) dial() (*websocket.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultDialTimeout)
	defer cancel()

	conn, resp, err := w.dialer.DialContext(ctx, w.url, w.headers)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("HTTP %d: %w", resp.StatusCode, err)
		}
		return nil, &Error{Op: "dial", Addr: w.url, Err: err}
	}
	return conn, nil
}

func (w *WebSocket) write(conn *websocket.Conn, frame []byte) error {
	if w.timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(w.timeout))
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return &Error{Op: "write", Addr: w.url, Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
