// Command spotify-wrapped runs the Spotify Wrapped dashboard API: the OAuth
// token exchange relay and the listening-statistics endpoints the browser
// frontend consumes.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/mgarciap/go-spotify-wrapped/internal/config"
	"github.com/mgarciap/go-spotify-wrapped/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "spotify-wrapped",
	})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	server := web.NewServer(web.ServerConfig{
		Config: cfg,
		Logger: logger,
	})

	return server.Run()
}
