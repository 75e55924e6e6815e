// Package main is the contactfinder command.
//
// Usage:
//
//	contactfinder serve
//	contactfinder search --domain acme.com --company "Acme Co"
//	contactfinder key set <api-key>
//
// See --help for all available options.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
)

func main() {
	// Variables already in the environment win over .env.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	Execute()
}
