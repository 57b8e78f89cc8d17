package network

import (
	"errors"
	"log"
	"net"
	"os"
	"sync"
)

// Registry is the authoritative set of live peer links.
//
// Every operation is safe to call concurrently. The lock only ever guards
// the member slice; no network I/O happens while holding it.
// The same port may transiently appear twice, FindByPort will then
// return the link that was added first.
type Registry struct {
	log *log.Logger
	mu  sync.Mutex
	// links is kept in insertion order
	links []*PeerLink
}

// NewRegistry creates an empty registry, logging write failures to logger.
// A nil logger logs to stderr
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Registry{log: logger}
}

// Add wraps a connection in a new PeerLink, inserts it, and starts its writer
func (reg *Registry) Add(conn net.Conn) *PeerLink {
	link := newPeerLink(conn)
	reg.mu.Lock()
	reg.links = append(reg.links, link)
	reg.mu.Unlock()
	go link.writeLoop(reg.writeFailed)
	return link
}

func (reg *Registry) writeFailed(link *PeerLink, err error) {
	reg.log.Printf("Error writing to peer %s: %v", link, err)
	reg.drop(link)
}

// Remove deletes a link from the registry.
// Removing a link that isn't there does nothing, and returns false
func (reg *Registry) Remove(link *PeerLink) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for i, other := range reg.links {
		if other == link {
			// keep the order, so List stays stable
			reg.links = append(reg.links[:i], reg.links[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot copies the current member set
func (reg *Registry) snapshot() []*PeerLink {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	links := make([]*PeerLink, len(reg.links))
	copy(links, reg.links)
	return links
}

// List returns the address of every link, as host:port, in insertion order
func (reg *Registry) List() []string {
	links := reg.snapshot()
	addrs := make([]string, len(links))
	for i, link := range links {
		addrs[i] = link.String()
	}
	return addrs
}

// Len returns the number of links currently registered
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.links)
}

// FindByPort returns the oldest link with a given remote port
func (reg *Registry) FindByPort(port int) (*PeerLink, bool) {
	id := idFromPort(port)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, link := range reg.links {
		if link.id == id {
			return link, true
		}
	}
	return nil, false
}

// Broadcast queues the same frame on every link present when it's called.
//
// It never waits on the network: each link has its own writer, so a
// stalled peer only holds up its own queue. A link whose queue is full
// gets logged, removed and closed, as does one whose write later fails.
// Broadcast returns the number of links the frame was queued on.
func (reg *Registry) Broadcast(frame []byte) int {
	queued := 0
	for _, link := range reg.snapshot() {
		err := link.enqueue(frame)
		switch {
		case err == nil:
			queued++
		case errors.Is(err, errQueueFull):
			reg.log.Printf("Peer %s isn't keeping up, dropping it", link)
			reg.drop(link)
		default:
			// a closed link is on its way out already
		}
	}
	return queued
}

// drop removes a link and closes its connection, which also ends its read loop
func (reg *Registry) drop(link *PeerLink) bool {
	removed := reg.Remove(link)
	// closing the connection may be slow, and also stops the writer
	link.close()
	return removed
}
