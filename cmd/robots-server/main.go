// Command robots-server runs the authoritative Robots game server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/markadiusz/robots-go/pkg/server"
)

func main() {
	opts, help, err := server.ParseOptions(os.Args[1:])
	if err != nil {
		var cfgErr *server.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, cfgErr.Error())
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if help {
		printUsage()
		os.Exit(0)
	}

	addr := fmt.Sprintf(":%d", opts.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "robots-server: bind %s: %v\n", addr, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(opts)
	log.Printf("robots-server: %q listening on %s (players=%d board=%dx%d)", opts.ServerName, ln.Addr(), opts.PlayersCount, opts.SizeX, opts.SizeY)

	if err := srv.Serve(ctx, ln); err != nil {
		log.Printf("robots-server: %v", err)
		os.Exit(1)
	}
	log.Println("robots-server: stopped")
}

func printUsage() {
	fmt.Fprintln(os.Stdout, `Usage: robots-server [options]

  -b, --bomb-timer uint16        bomb timer, in turns
  -c, --players-count uint8      number of players required to start a game
  -d, --turn-duration uint64     turn duration, in milliseconds
  -e, --explosion-radius uint16  explosion radius, in cells
  -k, --initial-blocks uint16    number of blocks placed at game start
  -l, --game-length uint16       number of turns per game
  -n, --server-name string       server name announced to clients
  -p, --port uint16              TCP port to listen on
  -s, --seed uint32              PRNG seed (default: wall-clock epoch)
  -x, --size-x uint16            board width, in cells
  -y, --size-y uint16            board height, in cells
  -h, --help                     print this help message`)
}
