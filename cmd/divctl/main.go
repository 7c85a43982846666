// Command divctl prints dividend forecasts for a Trading 212 account from the terminal.
package main

import (
	"os"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/app"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/config"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/logging"
)

func main() {
	load := func(verbose bool) (backend, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}

		// Logs go to stderr so stdout stays parseable.
		level := "warn"
		if verbose {
			level = cfg.Log.Level
		}
		log := logging.NewWithWriter(logging.Config{Level: level, Pretty: true}, os.Stderr)
		return appBackend{app.New(cfg, log)}, nil
	}

	if err := newRootCmd(load).Execute(); err != nil {
		os.Exit(1)
	}
}
