package network

import (
	"errors"
	"net"
	"strconv"
	"sync"
)

// outboundQueue is how many frames a link holds before we give up on it
const outboundQueue = 128

var errQueueFull = errors.New("outbound queue full")

// PeerID identifies a peer link within a node.
//
// For now this is just the remote port we observed when the connection
// was established. Nothing outside this file should rely on that.
type PeerID int

// idFromPort builds the PeerID a link with a given remote port has
func idFromPort(port int) PeerID {
	return PeerID(port)
}

// PeerLink holds one bidirectional connection to a remote node
type PeerLink struct {
	// id is the identity this link is known by
	id PeerID
	// host is the remote host, as observed at connection time
	host string
	// port is the remote port, as observed at connection time
	port int
	// conn is the connection we have with the peer, owned by this link
	conn net.Conn
	// out feeds writeLoop, the only goroutine writing to conn
	out chan []byte
	// done is closed along with conn
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// newPeerLink wraps a connection, reading its remote address once
func newPeerLink(conn net.Conn) *PeerLink {
	host, port := splitAddr(conn.RemoteAddr())
	return &PeerLink{
		id:   idFromPort(port),
		host: host,
		port: port,
		conn: conn,
		out:  make(chan []byte, outboundQueue),
		done: make(chan struct{}),
	}
}

// splitAddr extracts the host and port of an address.
// Addresses without a port, like those of pipes, map to port 0
func splitAddr(addr net.Addr) (string, int) {
	if addr == nil {
		return "", 0
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String(), tcp.Port
	}
	host, portString, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), 0
	}
	port, err := strconv.Atoi(portString)
	if err != nil {
		return host, 0
	}
	return host, port
}

// ID returns the identity of this link
func (link *PeerLink) ID() PeerID {
	return link.id
}

// Host returns the remote host of this link
func (link *PeerLink) Host() string {
	return link.host
}

// Port returns the remote port of this link
func (link *PeerLink) Port() int {
	return link.port
}

// String formats a link as host:port
func (link *PeerLink) String() string {
	return net.JoinHostPort(link.host, strconv.Itoa(link.port))
}

// enqueue hands a frame to the writer without blocking
func (link *PeerLink) enqueue(frame []byte) error {
	if link.isClosed() {
		return ErrClosed
	}
	select {
	case link.out <- frame:
		return nil
	default:
		return errQueueFull
	}
}

// writeLoop writes queued frames in order until the link closes.
// failed is called on a write error, unless the link was closed under us
func (link *PeerLink) writeLoop(failed func(*PeerLink, error)) {
	for {
		select {
		case frame := <-link.out:
			if err := link.write(frame); err != nil {
				if !link.isClosed() {
					failed(link, err)
				}
				return
			}
		case <-link.done:
			return
		}
	}
}

// write sends an entire frame, looping over short writes
func (link *PeerLink) write(frame []byte) error {
	for len(frame) > 0 {
		written, err := link.conn.Write(frame)
		if err != nil {
			return err
		}
		frame = frame[written:]
	}
	return nil
}

// close closes the underlying connection, at most once
func (link *PeerLink) close() error {
	link.closeOnce.Do(func() {
		close(link.done)
		link.closeErr = link.conn.Close()
	})
	return link.closeErr
}

func (link *PeerLink) isClosed() bool {
	select {
	case <-link.done:
		return true
	default:
		return false
	}
}
