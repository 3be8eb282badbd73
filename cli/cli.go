// Package cli provides the command-line interface for the fieldkit service.
package cli

import (
	"fmt"
	"os"
)

// Version information
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// osExit is a variable for os.Exit to allow testing
var osExit = os.Exit

// Run executes the CLI with the given arguments.
// This is the main entry point for the CLI.
func Run(args []string) {
	if len(args) < 2 {
		Usage()
		return
	}

	command := args[1]

	switch command {
	case "serve":
		ServeCommand(args)
	case "propose":
		ProposeCommand(args)
	case "decode":
		DecodeCommand(args)
	case "version":
		VersionCommand()
	case "help", "-h", "--help":
		Usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		Usage()
	}
}

// Usage prints the CLI usage information.
func Usage() {
	fmt.Printf("fieldkit - signature field placement service\n\n")
	fmt.Printf("Usage: %s <command> [options] <args>\n\n", os.Args[0])
	fmt.Println("Commands:")
	fmt.Println("  serve    Run the session HTTP server")
	fmt.Println("  propose  Print the proposed field layout for a signatory list")
	fmt.Println("  decode   Decode and verify a signature metadata payload")
	fmt.Println("  version  Show version information")
	fmt.Println("  help     Show this help message")
	fmt.Println("")
	fmt.Printf("Use '%s <command> -h' for command-specific help\n", os.Args[0])
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Printf("  %s serve -config fieldkit.yaml\n", os.Args[0])
	fmt.Printf("  %s propose -page 3 \"Ada Lovelace <ada@example.com>\"\n", os.Args[0])
	fmt.Printf("  %s decode payload.json\n", os.Args[0])
}

// VersionCommand prints version information.
func VersionCommand() {
	fmt.Printf("fieldkit version %s\n", Version)
	fmt.Printf("Build time: %s\n", BuildTime)
}
