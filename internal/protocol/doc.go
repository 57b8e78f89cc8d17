// Package protocol contains definitions and functions
// related to the ripple-line wire protocol.
// It contains, notably, the definition of the single message type,
// the line based codec used to put it on the wire,
// and the Receiver interface through which decoded messages are handed off.
package protocol
