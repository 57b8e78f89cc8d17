// Package network maintains the tcp links between a node and its peers.
//
// A Node listens for incoming connections and dials outgoing ones.
// Both kinds end up as a PeerLink in the node's Registry, which is the
// only record of who we're talking to. A link gets a read loop and a
// writer goroutine as soon as it's registered. The read loop decodes one
// frame per line and hands it to the node's protocol.Receiver. The writer
// drains the link's bounded queue, which is what Send fills.
//
// A link leaves the registry when its read loop ends, when its writer
// fails or falls behind, or when it's disconnected. Whichever comes first
// closes the connection, which stops the other goroutines too.
package network
