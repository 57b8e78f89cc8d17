package app

import (
	"fmt"
	"io"
	"os"

	"github.com/cronokirby/ripple-line/internal/network"
	"github.com/cronokirby/ripple-line/internal/protocol"
)

// frontEnd is either interface the user drives the node with
type frontEnd interface {
	protocol.Receiver
	io.Writer
}

// openLog picks where the node logs go.
// The terminal ui owns the screen, so without a file its logs are dropped
func openLog(cfg Config) (io.Writer, func(), error) {
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening log file: %w", err)
		}
		return file, func() { file.Close() }, nil
	}
	if cfg.UI == UITerminal {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

// Bootstrap dials every configured peer once, reporting failures to out
func Bootstrap(peer Peer, peers []string, out io.Writer) {
	for _, addr := range peers {
		host, port, err := SplitPeerAddr(addr)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if err := peer.Connect(host, port); err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprintf(out, "Connected to %s\n", addr)
	}
}

// Run starts a node with a config, and hands the terminal to the user
func Run(cfg Config) error {
	logOut, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var front frontEnd
	var tui *TUI
	if cfg.UI == UITerminal {
		tui, err = NewTUI("ripple-line")
		if err != nil {
			return err
		}
		defer tui.Close()
		front = tui
	} else {
		front = newLineReceiver(os.Stdout)
	}

	node := network.NewNode(network.Options{
		Receiver:    front,
		Logger:      cfg.NewLogger(logOut),
		DialTimeout: cfg.DialTimeout,
	})
	if err := node.Start(cfg.Port); err != nil {
		return err
	}
	defer node.Close()
	if tui != nil {
		tui.title = fmt.Sprintf("ripple-line %d (%s)", node.Port(), cfg.ShortID())
	}

	// dial in the background, so the ui shows up right away
	go Bootstrap(node, cfg.Peers, front)

	if tui != nil {
		return tui.Run(node)
	}
	return RunPrompt(node, front)
}
