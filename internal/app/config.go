package app

import (
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// UITerminal is the full screen interface
	UITerminal = "tui"
	// UIPrompt is the line by line interface
	UIPrompt = "prompt"
)

// Config holds everything needed to run a node
type Config struct {
	// Port is the port we listen on, and the sender of our messages
	Port int `yaml:"port"`
	// Peers are host:port addresses dialed once at startup
	Peers []string `yaml:"peers"`
	// UI is either UITerminal or UIPrompt
	UI string `yaml:"ui"`
	// LogFile receives the node's logs, instead of the terminal
	LogFile string `yaml:"log_file"`
	// DialTimeout bounds every connection attempt, 0 means none
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// InstanceID tells apart nodes in logs, it never leaves the process
	InstanceID string `yaml:"-"`
}

// LoadEnvFile loads environment variables from a .env file.
//
// A missing file is fine, variables already set are kept.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// LoadConfigFile reads a yaml config file
func LoadConfigFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// merge overrides the fields of cfg that are set in other
func (cfg Config) merge(other Config) Config {
	if other.Port != 0 {
		cfg.Port = other.Port
	}
	cfg.Peers = append(cfg.Peers, other.Peers...)
	if other.UI != "" {
		cfg.UI = other.UI
	}
	if other.LogFile != "" {
		cfg.LogFile = other.LogFile
	}
	if other.DialTimeout != 0 {
		cfg.DialTimeout = other.DialTimeout
	}
	return cfg
}

// finish fills in defaults, and checks the result makes sense
func (cfg Config) finish() (Config, error) {
	if cfg.UI == "" {
		cfg.UI = UITerminal
	}
	if cfg.UI != UITerminal && cfg.UI != UIPrompt {
		return cfg, fmt.Errorf("unknown ui %q", cfg.UI)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid port %d", cfg.Port)
	}
	for _, peer := range cfg.Peers {
		if _, _, err := SplitPeerAddr(peer); err != nil {
			return cfg, err
		}
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.New().String()
	}
	return cfg, nil
}

// ShortID is the first block of the instance id
func (cfg Config) ShortID() string {
	if len(cfg.InstanceID) < 8 {
		return cfg.InstanceID
	}
	return cfg.InstanceID[:8]
}

// NewLogger creates the logger a node with this config uses
func (cfg Config) NewLogger(out io.Writer) *log.Logger {
	prefix := fmt.Sprintf("[ripple %d %s] ", cfg.Port, cfg.ShortID())
	return log.New(out, prefix, log.LstdFlags)
}

// SplitPeerAddr splits a host:port address, checking the port is numeric
func SplitPeerAddr(addr string) (string, int, error) {
	host, portString, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid peer address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portString)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port in peer address %q", addr)
	}
	if host == "" {
		host = "localhost"
	}
	return host, port, nil
}
