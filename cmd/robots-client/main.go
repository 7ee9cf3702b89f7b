// Command robots-client mediates between a Robots server (TCP) and a
// local GUI process (UDP).
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/markadiusz/robots-go/pkg/client"
)

func main() {
	opts, help, err := client.ParseOptions(os.Args[1:])
	if err != nil {
		var cfgErr *client.ConfigError
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := client.New(opts)
	log.Printf("robots-client: connecting to server %s:%d, relaying to GUI %s:%d", opts.ServerHost, opts.ServerPort, opts.GuiHost, opts.GuiPort)

	if err := c.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Connection to the server closed")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stdout, `Usage: robots-client [options]

  -d, --gui-address string     GUI address (host:port)
  -n, --player-name string     player name sent with Join
  -p, --port uint16            local UDP port to receive GUI input on
  -s, --server-address string  server address (host:port)
  -h, --help                   print this help message`)
}
