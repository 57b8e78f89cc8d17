package network

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no live link has the requested port
	ErrNotFound = errors.New("no peer with that port")
	// ErrClosed is returned by operations on a node that has been closed
	ErrClosed = errors.New("node is closed")
	// ErrStarted is returned when starting a node that's already listening
	ErrStarted = errors.New("node is already listening")
)

// ConnectError is returned when dialing a peer fails.
//
// Nothing about the node changes when this happens, and we never retry.
type ConnectError struct {
	// Addr is the host:port we tried to reach
	Addr string
	// Err is the reason the dial failed
	Err error
}

func (err *ConnectError) Error() string {
	return fmt.Sprintf("couldn't connect to %s: %v", err.Addr, err.Err)
}

func (err *ConnectError) Unwrap() error {
	return err.Err
}
