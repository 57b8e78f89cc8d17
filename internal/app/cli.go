package app

import (
	"errors"
	"io"
	"time"

	"github.com/alecthomas/kingpin"
)

// flags holds every value kingpin parses for us
type flags struct {
	config      *string
	ui          *string
	logFile     *string
	dialTimeout *time.Duration
	peers       *[]string

	start     *kingpin.CmdClause
	startPort *int

	connect     *kingpin.CmdClause
	connectPort *int
	connectAddr *string
}

// newApp provides the starting point for command parsing
func newApp(out io.Writer) (*kingpin.Application, *flags) {
	app := kingpin.New("ripple-line", "A minimal peer to peer chat node")
	app.Writer(out)
	app.Terminate(nil)
	f := &flags{}

	f.config = app.Flag("config", "Path to a yaml config file").Envar("RIPPLE_CONFIG").String()
	f.ui = app.Flag("ui", "Interface to use, tui or prompt").Envar("RIPPLE_UI").Enum(UITerminal, UIPrompt)
	f.logFile = app.Flag("log-file", "Write logs to this file instead of the terminal").Envar("RIPPLE_LOG_FILE").String()
	f.dialTimeout = app.Flag("dial-timeout", "Give up connecting to a peer after this long").Envar("RIPPLE_DIAL_TIMEOUT").Duration()
	f.peers = app.Flag("peer", "A host:port to connect to at startup, can be repeated").Strings()

	// start handles the start command
	f.start = app.Command("start", "Start a new node")
	f.startPort = f.start.Arg("port", "The port to listen on, from the config file or any free one when missing").Int()

	// connect starts a node, and joins an existing one right away
	f.connect = app.Command("connect", "Start a node and connect to an existing one")
	f.connectPort = f.connect.Arg("port", "The port to listen on").Required().Int()
	f.connectAddr = f.connect.Arg("addr", "The host:port of the node to connect to").Required().String()

	return app, f
}

// ParseArgs turns command line arguments into a Config.
//
// Values come from the yaml file given by --config, then from flags
// and RIPPLE_* environment variables, the later ones winning.
func ParseArgs(args []string, out io.Writer) (Config, error) {
	app, f := newApp(out)
	command, err := app.Parse(args)
	if err != nil {
		return Config{}, err
	}
	// --help prints and carries on, since we don't let kingpin exit
	if command == "" {
		return Config{}, errors.New("no command given, try --help")
	}
	var fromFile Config
	if *f.config != "" {
		fromFile, err = LoadConfigFile(*f.config)
		if err != nil {
			return Config{}, err
		}
	}
	fromFlags := Config{
		UI:          *f.ui,
		LogFile:     *f.logFile,
		DialTimeout: *f.dialTimeout,
		Peers:       *f.peers,
	}
	switch command {
	case f.start.FullCommand():
		fromFlags.Port = *f.startPort
	case f.connect.FullCommand():
		fromFlags.Port = *f.connectPort
		fromFlags.Peers = append([]string{*f.connectAddr}, fromFlags.Peers...)
	}
	return fromFile.merge(fromFlags).finish()
}
