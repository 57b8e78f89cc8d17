package protocol

import (
	"fmt"
	"io"
	"os"
)

// Receiver is some type that can do something when new messages arrive
//
// This is useful in testing, as it allows us to define tests that check
// if certain content was received. In normal usage, this allows us to
// update a gui or terminal based client.
//
// Calls for a single peer happen in the order that peer sent its frames,
// but calls for different peers may happen concurrently.
type Receiver interface {
	// ReceiveMessage reacts to a well formed message from a peer
	ReceiveMessage(from int, content string)
	// ReceiveMalformed reacts to a frame we couldn't decode
	ReceiveMalformed(raw string)
}

// PrintReceiver is a Receiver that just prints what it receives
type PrintReceiver struct {
	// Out is where messages get printed, stdout when nil
	Out io.Writer
}

func (p PrintReceiver) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// ReceiveMessage prints the message along with its sender
func (p PrintReceiver) ReceiveMessage(from int, content string) {
	fmt.Fprintf(p.out(), "%d: %s\n", from, content)
}

// ReceiveMalformed prints the raw frame we got
func (p PrintReceiver) ReceiveMalformed(raw string) {
	fmt.Fprintf(p.out(), "malformed message: %q\n", raw)
}

// NilReceiver simply does nothing on receiving messages
type NilReceiver struct{}

// ReceiveMessage does nothing
func (NilReceiver) ReceiveMessage(from int, content string) {}

// ReceiveMalformed does nothing
func (NilReceiver) ReceiveMalformed(raw string) {}
