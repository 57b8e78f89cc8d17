package app

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jroimartin/gocui"
)

// TUI represents a graphical ui driving a peer
type TUI struct {
	*gocui.Gui
	peer  Peer
	title string
}

// NewTUI takes over the terminal, Close gives it back
func NewTUI(title string) (*TUI, error) {
	under, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	return &TUI{Gui: under, title: title}, nil
}

// printf appends a line to the messages view.
//
// This is safe to call from any goroutine, gocui runs the update
// on its own loop.
func (ui *TUI) printf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	ui.Update(func(g *gocui.Gui) error {
		msg, err := g.View("messages")
		if err != nil {
			return nil
		}
		fmt.Fprintln(msg, line)
		return nil
	})
}

// ReceiveMessage shows a message from a peer
func (ui *TUI) ReceiveMessage(from int, content string) {
	ui.printf("%d: %s", from, content)
}

// ReceiveMalformed shows a frame we couldn't make sense of
func (ui *TUI) ReceiveMalformed(raw string) {
	ui.printf("malformed message: %q", raw)
}

// PeerJoined shows a new connection
func (ui *TUI) PeerJoined(addr string) {
	ui.printf("Peer %s connected", addr)
}

// PeerLeft shows a lost connection
func (ui *TUI) PeerLeft(addr string) {
	ui.printf("Peer %s disconnected", addr)
}

// Write sends command feedback to the messages view
func (ui *TUI) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(bytes.TrimRight(p, "\n")), "\n") {
		ui.printf("%s", line)
	}
	return len(p), nil
}

var defaultEditor = gocui.EditorFunc(simpleEditor)

func simpleEditor(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case ch != 0 && ch != 10 && mod == 0:
		v.EditWrite(ch)
	case key == gocui.KeySpace:
		v.EditWrite(' ')
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	}
}

func (ui *TUI) inputView(maxX, maxY int) error {
	v, err := ui.SetView("input", 0, 5*maxY/6+2, maxX-1, maxY-1)
	if err == nil {
		return nil
	}
	if err != gocui.ErrUnknownView {
		return err
	}
	v.Editable = true
	v.Editor = defaultEditor
	submit := func(g *gocui.Gui, v *gocui.View) error {
		content := strings.TrimSuffix(v.Buffer(), "\n")
		v.Clear()
		if err := v.SetCursor(0, 0); err != nil {
			return err
		}
		if content == "" {
			return nil
		}
		// dialing can block, so keep it off the ui loop
		go func() {
			if RunLine(ui.peer, content, ui) {
				ui.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
			}
		}()
		return nil
	}
	// the keybinding is only set up the first time the view exists
	return ui.SetKeybinding("input", gocui.KeyEnter, gocui.ModNone, submit)
}

func (ui *TUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	if v, err := g.SetView("messages", 0, 0, maxX-1, 5*maxY/6+1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = ui.title
		v.Autoscroll = true
		v.Wrap = true
		fmt.Fprintln(v, usage)
	}
	if err := ui.inputView(maxX, maxY); err != nil {
		return err
	}
	if _, err := g.SetCurrentView("input"); err != nil {
		return err
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

// Run drives a peer from the terminal ui, until the user quits
func (ui *TUI) Run(peer Peer) error {
	ui.peer = peer
	ui.Cursor = true
	ui.SetManagerFunc(ui.layout)
	if err := ui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return err
	}
	if err := ui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}
