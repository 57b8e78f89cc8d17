package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/manifoldco/promptui"
)

// lineReceiver prints what the node receives, above the prompt
type lineReceiver struct {
	mu  sync.Mutex
	out io.Writer
}

func newLineReceiver(out io.Writer) *lineReceiver {
	return &lineReceiver{out: out}
}

func (r *lineReceiver) printf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// go back to the start of the prompt line before printing
	fmt.Fprintf(r.out, "\r"+format+"\n", args...)
}

func (r *lineReceiver) ReceiveMessage(from int, content string) {
	r.printf("%d: %s", from, content)
}

func (r *lineReceiver) ReceiveMalformed(raw string) {
	r.printf("malformed message: %q", raw)
}

func (r *lineReceiver) PeerJoined(addr string) {
	r.printf("Peer %s connected", addr)
}

func (r *lineReceiver) PeerLeft(addr string) {
	r.printf("Peer %s disconnected", addr)
}

// Write lets command feedback go through the same lock as messages
func (r *lineReceiver) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.Write(p)
}

// RunPrompt reads commands line by line until the user quits
func RunPrompt(peer Peer, out io.Writer) error {
	prompt := promptui.Prompt{
		Label: fmt.Sprintf("%d", peer.Port()),
		Stdin: os.Stdin,
	}
	fmt.Fprintf(out, "Node started on port %d\n%s\n", peer.Port(), usage)
	for {
		input, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}
		if RunLine(peer, input, out) {
			return nil
		}
	}
}
