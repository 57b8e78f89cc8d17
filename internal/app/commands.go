package app

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cronokirby/ripple-line/internal/network"
)

// Peer is what the front ends drive, usually a *network.Node
type Peer interface {
	Connect(host string, port int) error
	Disconnect(port int) error
	List() []string
	Send(content string) int
	Port() int
}

// CommandKind says what a line typed by the user asks for
type CommandKind int

const (
	// CmdNone is an empty line, which does nothing
	CmdNone CommandKind = iota
	// CmdSend sends the line's text to every peer
	CmdSend
	// CmdConnect dials a new peer
	CmdConnect
	// CmdDisconnect drops the peer with a given port
	CmdDisconnect
	// CmdPeers lists the live peers
	CmdPeers
	// CmdQuit leaves the program
	CmdQuit
)

// Command is a parsed line of user input
type Command struct {
	Kind CommandKind
	Host string
	Port int
	Text string
}

const usage = `/connect <host> <port>   connect to a peer
/disconnect <port>       drop the peer with that port
/peers                   list connected peers
/quit                    leave
anything else is sent to every peer`

// ParseCommand interprets a line of user input.
//
// Lines not starting with a slash are messages.
func ParseCommand(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{Kind: CmdNone}, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: CmdSend, Text: line}, nil
	}
	fields := strings.Fields(trimmed)
	switch fields[0] {
	case "/connect":
		if len(fields) != 3 {
			return Command{}, errors.New("usage: /connect <host> <port>")
		}
		port, err := parsePort(fields[2])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdConnect, Host: fields[1], Port: port}, nil
	case "/disconnect":
		if len(fields) != 2 {
			return Command{}, errors.New("usage: /disconnect <port>")
		}
		port, err := parsePort(fields[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdDisconnect, Port: port}, nil
	case "/peers":
		return Command{Kind: CmdPeers}, nil
	case "/quit":
		return Command{Kind: CmdQuit}, nil
	case "/help":
		return Command{}, errors.New(usage)
	default:
		return Command{}, fmt.Errorf("unknown command %s, try /help", fields[0])
	}
}

func parsePort(text string) (int, error) {
	port, err := strconv.Atoi(text)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", text)
	}
	return port, nil
}

// Execute runs a command against a peer, writing feedback to out.
// It returns true when the user asked to quit
func Execute(peer Peer, cmd Command, out io.Writer) bool {
	switch cmd.Kind {
	case CmdSend:
		peer.Send(cmd.Text)
		fmt.Fprintf(out, "(me) %d: %s\n", peer.Port(), cmd.Text)
	case CmdConnect:
		if err := peer.Connect(cmd.Host, cmd.Port); err != nil {
			fmt.Fprintln(out, err)
			return false
		}
		fmt.Fprintf(out, "Connected to %s:%d\n", cmd.Host, cmd.Port)
	case CmdDisconnect:
		err := peer.Disconnect(cmd.Port)
		if errors.Is(err, network.ErrNotFound) {
			fmt.Fprintf(out, "No peer with port %d\n", cmd.Port)
			return false
		}
		if err != nil {
			fmt.Fprintln(out, err)
			return false
		}
		fmt.Fprintf(out, "Disconnected from peer %d\n", cmd.Port)
	case CmdPeers:
		peers := peer.List()
		if len(peers) == 0 {
			fmt.Fprintln(out, "No peers connected")
			return false
		}
		fmt.Fprintln(out, "Available peers:")
		for _, addr := range peers {
			fmt.Fprintln(out, addr)
		}
	case CmdQuit:
		return true
	}
	return false
}

// RunLine parses and executes a single line, reporting parse errors to out
func RunLine(peer Peer, line string, out io.Writer) bool {
	cmd, err := ParseCommand(line)
	if err != nil {
		fmt.Fprintln(out, err)
		return false
	}
	return Execute(peer, cmd, out)
}
