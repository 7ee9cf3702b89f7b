// Package server implements the Robots game server: TCP connection
// acceptance, turn-based simulation, and history replay for late joiners.
package server

import (
	"fmt"
	"time"

	flag "github.com/spf13/pflag"
)

// ConfigError signals a problem with startup configuration: a missing or
// invalid CLI option. Callers print Error() to stderr and exit 1.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configErrorf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Options holds one game's fixed configuration, parsed from the server's
// command line.
type Options struct {
	BombTimer       uint16
	PlayersCount    uint8
	TurnDuration    time.Duration
	ExplosionRadius uint16
	InitialBlocks   uint16
	GameLength      uint16
	ServerName      string
	Port            uint16
	Seed            uint32
	SizeX           uint16
	SizeY           uint16
}

// ParseOptions parses args (excluding the program name) into Options. It
// returns (_, true, nil) when --help/-h was requested, in which case the
// caller prints its own usage text and exits 0.
func ParseOptions(args []string) (Options, bool, error) {
	fs := flag.NewFlagSet("robots-server", flag.ContinueOnError)
	fs.SetOutput(new(discard))

	help := fs.BoolP("help", "h", false, "print this help message")
	bombTimer := fs.Uint16P("bomb-timer", "b", 0, "bomb timer, in turns")
	playersCount := fs.Uint8P("players-count", "c", 0, "number of players required to start a game")
	turnDurationMs := fs.Uint64P("turn-duration", "d", 0, "turn duration, in milliseconds")
	explosionRadius := fs.Uint16P("explosion-radius", "e", 0, "explosion radius, in cells")
	initialBlocks := fs.Uint16P("initial-blocks", "k", 0, "number of blocks placed at game start")
	gameLength := fs.Uint16P("game-length", "l", 0, "number of turns per game")
	serverName := fs.StringP("server-name", "n", "", "server name announced to clients")
	port := fs.Uint16P("port", "p", 0, "TCP port to listen on")
	seed := fs.Uint32P("seed", "s", uint32(time.Now().Unix()), "PRNG seed")
	sizeX := fs.Uint16P("size-x", "x", 0, "board width, in cells")
	sizeY := fs.Uint16P("size-y", "y", 0, "board height, in cells")

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
		{"bomb-timer", fs.Changed("bomb-timer")},
		{"players-count", fs.Changed("players-count")},
		{"turn-duration", fs.Changed("turn-duration")},
		{"explosion-radius", fs.Changed("explosion-radius")},
		{"initial-blocks", fs.Changed("initial-blocks")},
		{"game-length", fs.Changed("game-length")},
		{"server-name", fs.Changed("server-name")},
		{"port", fs.Changed("port")},
		{"size-x", fs.Changed("size-x")},
		{"size-y", fs.Changed("size-y")},
	}
	for _, r := range required {
		if !r.set {
			return Options{}, false, configErrorf("missing required option --%s", r.name)
		}
	}
	if *playersCount == 0 {
		return Options{}, false, configErrorf("--players-count must be at least 1")
	}

	return Options{
		BombTimer:       *bombTimer,
		PlayersCount:    *playersCount,
		TurnDuration:    time.Duration(*turnDurationMs) * time.Millisecond,
		ExplosionRadius: *explosionRadius,
		InitialBlocks:   *initialBlocks,
		GameLength:      *gameLength,
		ServerName:      *serverName,
		Port:            *port,
		Seed:            *seed,
		SizeX:           *sizeX,
		SizeY:           *sizeY,
	}, false, nil
}

// discard is an io.Writer that drops everything written to it; pflag's
// own usage printer is never used, so its default stderr output is muted.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
