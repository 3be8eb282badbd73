package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/quillmark/fieldkit/metadata"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeCommand implements the 'decode' command.
func DecodeCommand(args []string) {
	decodeFlags := flag.NewFlagSet("decode", flag.ExitOnError)

	asJSON := decodeFlags.Bool("json", false, "Print the decoded payload as indented JSON")

	decodeFlags.Usage = func() {
		fmt.Printf("Usage: %s decode [options] <payload-file>\n\n", os.Args[0])
		fmt.Println("Decode and verify a signature metadata payload.")
		fmt.Println("")
		fmt.Println("Reads the payload from the given file, or from stdin when the")
		fmt.Println("argument is '-'.")
		fmt.Println("")
		fmt.Println("Options:")
		decodeFlags.PrintDefaults()
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Printf("  %s decode payload.json\n", os.Args[0])
		fmt.Printf("  curl -si $URL | grep X-Signature-Metadata: | cut -d' ' -f2 | %s decode -\n", os.Args[0])
	}

	if err := decodeFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	if decodeFlags.NArg() < 1 {
		decodeFlags.Usage()
		osExit(1)
		return
	}

	encoded, err := readPayload(decodeFlags.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading payload: %v\n", err)
		osExit(1)
		return
	}

	payload, ok := metadata.DecodePayload(encoded)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: payload is malformed or fails schema validation")
		osExit(1)
		return
	}

	if *asJSON {
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding payload: %v\n", err)
			osExit(1)
			return
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("Version:      %s\n", payload.Version)
	fmt.Printf("Generated at: %s\n", payload.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Digest:       %s\n", metadata.Digest(encoded))
	fmt.Printf("Signatories:  %d\n", len(payload.Signatories))
	for i, s := range payload.Signatories {
		fmt.Printf("  [%d] %s <%s> %s\n", i, s.Name, s.Email, s.Role)
	}
	fmt.Printf("Fields:       %d\n", len(payload.SignatureFields))
	for _, f := range payload.SignatureFields {
		fmt.Printf("  %-14s %-10s page %d  x=%.1f y=%.1f w=%.1f h=%.1f\n",
			f.ID, f.Kind, f.PageNumber,
			f.Rect.X, f.Rect.Y, f.Rect.Width, f.Rect.Height)
	}
}

func readPayload(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return strings.TrimSpace(string(data)), err
	}
	data, err := os.ReadFile(path)
	return strings.TrimSpace(string(data)), err
}
