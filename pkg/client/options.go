// Package client implements the Robots client: it mediates between the
// authoritative server (TCP) and a local GUI process (UDP).
package client

import (
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
)

// ConfigError signals a problem with startup configuration: a missing or
// invalid CLI option, or an unparseable address. Callers print Error()
// to stderr and exit 1.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Options holds the client's command-line configuration.
type Options struct {
	GuiHost    string
	GuiPort    uint16
	PlayerName string
	Port       uint16
	ServerHost string
	ServerPort uint16
}

// ParseOptions parses args (excluding the program name) into Options. It
// returns (_, true, nil) when --help/-h was requested.
func ParseOptions(args []string) (Options, bool, error) {
	fs := flag.NewFlagSet("robots-client", flag.ContinueOnError)
	fs.SetOutput(new(discard))

	help := fs.BoolP("help", "h", false, "print this help message")
	guiAddress := fs.StringP("gui-address", "d", "", "GUI address (host:port)")
	playerName := fs.StringP("player-name", "n", "", "player name sent with Join")
	port := fs.Uint16P("port", "p", 0, "local UDP port to receive GUI input on")
	serverAddress := fs.StringP("server-address", "s", "", "server address (host:port)")

	if err := fs.Parse(args); err != nil {
		return Options{}, false, configErrorf("%v", err)
	}
	if *help {
		return Options{}, true, nil
	}

	required := []struct {
		name string
		set  bool
	}{
		{"gui-address", fs.Changed("gui-address")},
		{"player-name", fs.Changed("player-name")},
		{"port", fs.Changed("port")},
		{"server-address", fs.Changed("server-address")},
	}
	for _, r := range required {
		if !r.set {
			return Options{}, false, configErrorf("missing required option --%s", r.name)
		}
	}

	guiHost, guiPort, err := SplitAddress(*guiAddress)
	if err != nil {
		return Options{}, false, configErrorf("invalid --gui-address %q: %v", *guiAddress, err)
	}
	serverHost, serverPort, err := SplitAddress(*serverAddress)
	if err != nil {
		return Options{}, false, configErrorf("invalid --server-address %q: %v", *serverAddress, err)
	}

	return Options{
		GuiHost:    guiHost,
		GuiPort:    guiPort,
		PlayerName: *playerName,
		Port:       *port,
		ServerHost: serverHost,
		ServerPort: serverPort,
	}, false, nil
}

// SplitAddress splits addr into host and port, matching the wire
// contract's address grammar: host:port, ipv4:port, or [ipv6]:port.
// It splits on the LAST colon, since an unbracketed IPv6 host would
// otherwise contain colons of its own; a bracketed host has its
// brackets stripped.
func SplitAddress(addr string) (host string, port uint16, err error) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("missing port in address %q", addr)
	}
	hostPart, portPart := addr[:idx], addr[idx+1:]

	if len(hostPart) >= 2 && strings.HasPrefix(hostPart, "[") && strings.HasSuffix(hostPart, "]") {
		hostPart = hostPart[1 : len(hostPart)-1]
	}
	if hostPart == "" {
		return "", 0, fmt.Errorf("missing host in address %q", addr)
	}

	p, err := strconv.ParseUint(portPart, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in address %q: %w", addr, err)
	}
	return hostPart, uint16(p), nil
}

// discard is an io.Writer that drops everything written to it; pflag's
// own usage printer is never used.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
