// Command fieldkit runs the signature field placement service.
//
// Usage:
//
//	fieldkit <command> [options] <args>
//
// Commands:
//
//	serve    Run the session HTTP server
//	propose  Print the proposed field layout for a signatory list
//	decode   Decode and verify a signature metadata payload
//	version  Show version information
//	help     Show help message
//
// Examples:
//
//	# Run the server
//	fieldkit serve -config fieldkit.yaml
//
//	# Inspect the layout proposed for two signatories
//	fieldkit propose -page 3 "Ada Lovelace <ada@example.com>" "Charles Babbage <cb@example.com>"
//
//	# Decode a metadata payload
//	fieldkit decode payload.json
package main

import (
	"os"

	"github.com/quillmark/fieldkit/cli"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/fieldkit
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Set version info
	cli.Version = version
	cli.BuildTime = buildTime

	// Run the CLI
	cli.Run(os.Args)
}
