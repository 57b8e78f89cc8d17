package network

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/cronokirby/ripple-line/internal/protocol"
)

// acceptBackoff is how long we wait after a failed accept before the next one
const acceptBackoff = 50 * time.Millisecond

// PeerWatcher is notified when links come and go.
//
// A Receiver passed to NewNode that also implements this interface
// gets notified automatically.
type PeerWatcher interface {
	// PeerJoined is called once a new link is registered
	PeerJoined(addr string)
	// PeerLeft is called once a link has been removed and closed
	PeerLeft(addr string)
}

// Options configures a Node
type Options struct {
	// Receiver gets every message we read, NilReceiver when nil
	Receiver protocol.Receiver
	// Logger is where the node logs peer events, stderr when nil
	Logger *log.Logger
	// DialTimeout bounds Connect, 0 means no timeout
	DialTimeout time.Duration
}

// Node is a single member of the messaging network.
//
// It listens for inbound peers, dials outbound ones, and broadcasts
// messages to every live link. All its methods are safe to call concurrently.
type Node struct {
	log      *log.Logger
	receiver protocol.Receiver
	watcher  PeerWatcher
	dialer   net.Dialer
	registry *Registry
	// loops tracks the accept loop and every read loop
	loops sync.WaitGroup
	// mu guards the fields below
	mu       sync.Mutex
	listener net.Listener
	port     int
	closed   bool
}

// NewNode creates a node that isn't listening yet
func NewNode(opts Options) *Node {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "[ripple] ", log.LstdFlags)
	}
	receiver := opts.Receiver
	if receiver == nil {
		receiver = protocol.NilReceiver{}
	}
	watcher, _ := receiver.(PeerWatcher)
	return &Node{
		log:      logger,
		receiver: receiver,
		watcher:  watcher,
		dialer:   net.Dialer{Timeout: opts.DialTimeout},
		registry: NewRegistry(logger),
	}
}

// Start binds to a port, and accepts peers in the background until Close.
//
// Port 0 picks any free port, Port returns the one we got.
// The port we listen on is also the sender of every message we send.
func (node *Node) Start(port int) error {
	node.mu.Lock()
	defer node.mu.Unlock()
	if node.closed {
		return ErrClosed
	}
	if node.listener != nil {
		return ErrStarted
	}
	l, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return fmt.Errorf("couldn't listen on port %d: %w", port, err)
	}
	node.listener = l
	node.port = l.Addr().(*net.TCPAddr).Port
	node.loops.Add(1)
	go node.acceptLoop(l)
	node.log.Printf("Listening on port %d", node.port)
	return nil
}

// Port returns the port we're listening on, 0 before Start
func (node *Node) Port() int {
	node.mu.Lock()
	defer node.mu.Unlock()
	return node.port
}

func (node *Node) acceptLoop(l net.Listener) {
	defer node.loops.Done()
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			// a single bad connection shouldn't stop us
			node.log.Printf("Error accepting conn: %v", err)
			time.Sleep(acceptBackoff)
			continue
		}
		node.admit(conn)
	}
}

// admit registers a fresh connection and starts its read loop.
// After Close, connections are closed instead, and admit returns nil
func (node *Node) admit(conn net.Conn) *PeerLink {
	node.mu.Lock()
	if node.closed {
		node.mu.Unlock()
		conn.Close()
		return nil
	}
	link := node.registry.Add(conn)
	node.loops.Add(1)
	node.mu.Unlock()
	node.log.Printf("Peer %s connected", link)
	if node.watcher != nil {
		node.watcher.PeerJoined(link.String())
	}
	go node.readLoop(link)
	return link
}

// Connect dials a peer, blocking until the connection succeeds or fails.
//
// On failure a *ConnectError is returned and nothing changes.
func (node *Node) Connect(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := node.dialer.Dial("tcp", addr)
	if err != nil {
		return &ConnectError{Addr: addr, Err: err}
	}
	if node.admit(conn) == nil {
		return &ConnectError{Addr: addr, Err: ErrClosed}
	}
	return nil
}

// Disconnect closes the link with a given remote port.
//
// ErrNotFound is returned if no such link exists, which isn't serious.
func (node *Node) Disconnect(port int) error {
	link, ok := node.registry.FindByPort(port)
	if !ok {
		return ErrNotFound
	}
	// the read loop will see the closed conn, and release the link again
	node.registry.drop(link)
	return nil
}

// List returns the address of every live peer, as host:port
func (node *Node) List() []string {
	return node.registry.List()
}

// Send broadcasts some content to every live peer, without waiting for
// the network. It returns how many peers the frame was queued for.
func (node *Node) Send(content string) int {
	frame := protocol.Encode(protocol.Message{From: node.Port(), Content: content})
	return node.registry.Broadcast(frame)
}

// Close stops listening, closes every link, and waits for all loops to end
func (node *Node) Close() error {
	node.mu.Lock()
	if node.closed {
		node.mu.Unlock()
		return ErrClosed
	}
	node.closed = true
	l := node.listener
	node.mu.Unlock()
	var err error
	if l != nil {
		err = l.Close()
	}
	for _, link := range node.registry.snapshot() {
		node.registry.drop(link)
	}
	node.loops.Wait()
	return err
}
