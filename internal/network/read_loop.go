package network

import (
	"bufio"
	"errors"
	"io"
	"net"

	"github.com/cronokirby/ripple-line/internal/protocol"
)

// readLoop owns the read side of a link, for as long as the link lives.
//
// It reads one frame at a time, and hands it off before reading the next,
// which keeps the messages of a single peer in order.
// The loop ends on EOF or any read error, including the one we get
// after somebody else closes the connection; in every case the link
// is released on the way out, so loops and registry entries stay 1:1.
func (node *Node) readLoop(link *PeerLink) {
	defer node.loops.Done()
	defer node.release(link)
	reader := bufio.NewReader(link.conn)
	for {
		frame, err := reader.ReadBytes(protocol.Terminator)
		// a last frame without a terminator still counts
		if len(frame) > 0 {
			node.dispatch(link, frame)
		}
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				node.log.Printf("Error reading from peer %s: %v", link, err)
			}
			return
		}
	}
}

// dispatch decodes a frame, and passes the result to the receiver
func (node *Node) dispatch(link *PeerLink, frame []byte) {
	// blank lines carry nothing, we just skip them
	if len(protocol.TrimFrame(frame)) == 0 {
		return
	}
	msg, err := protocol.Decode(frame)
	if err != nil {
		var decodeErr *protocol.DecodeError
		if errors.As(err, &decodeErr) {
			node.log.Printf("Malformed frame from peer %s: %s", link, decodeErr.Reason)
			node.receiver.ReceiveMalformed(decodeErr.Frame)
		}
		return
	}
	node.receiver.ReceiveMessage(msg.From, msg.Content)
}

// release removes a link and closes it, notifying the watcher once
func (node *Node) release(link *PeerLink) {
	node.registry.drop(link)
	node.log.Printf("Peer %s disconnected", link)
	if node.watcher != nil {
		node.watcher.PeerLeft(link.String())
	}
}
