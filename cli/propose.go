package cli

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/quillmark/fieldkit/field"
	"github.com/quillmark/fieldkit/layout"
	"github.com/quillmark/fieldkit/metadata"
)

// signatoryPattern matches "Name <email>" with an optional "(role)" suffix.
var signatoryPattern = regexp.MustCompile(`^(.*?)\s*<([^>]*)>(?:\s*\(([^)]*)\))?$`)

// ProposeCommand implements the 'propose' command.
func ProposeCommand(args []string) {
	proposeFlags := flag.NewFlagSet("propose", flag.ExitOnError)

	lastPage := proposeFlags.Int("page", 1, "Last page of the document")
	asMetadata := proposeFlags.Bool("metadata", false, "Print the encoded metadata payload instead of a table")

	proposeFlags.Usage = func() {
		fmt.Printf("Usage: %s propose [options] <signatory> [signatory...]\n\n", os.Args[0])
		fmt.Println("Print the proposed field layout for a signatory list.")
		fmt.Println("")
		fmt.Println("Each signatory is given as 'Name <email>' with an optional '(role)' suffix.")
		fmt.Println("")
		fmt.Println("Options:")
		proposeFlags.PrintDefaults()
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Printf("  %s propose \"Ada Lovelace <ada@example.com>\"\n", os.Args[0])
		fmt.Printf("  %s propose -page 5 \"Ada Lovelace <ada@example.com> (author)\" \"Charles Babbage <cb@example.com>\"\n", os.Args[0])
		fmt.Printf("  %s propose -metadata \"Ada Lovelace <ada@example.com>\"\n", os.Args[0])
	}

	if err := proposeFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	if proposeFlags.NArg() < 1 {
		proposeFlags.Usage()
		osExit(1)
		return
	}

	signatories := make([]field.Signatory, 0, proposeFlags.NArg())
	for _, arg := range proposeFlags.Args() {
		signatories = append(signatories, parseSignatory(arg))
	}

	fields := layout.Propose(signatories, *lastPage)

	if *asMetadata {
		encoded, err := metadata.Encode(fields, signatories)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding metadata: %v\n", err)
			osExit(1)
			return
		}
		fmt.Println(encoded)
		return
	}

	fmt.Printf("Proposed layout for %d signatories (page %d):\n\n", len(signatories), *lastPage)
	for _, f := range fields {
		fmt.Printf("  %-14s %-10s page %d  x=%.1f y=%.1f w=%.1f h=%.1f  %s\n",
			f.ID, f.Kind, f.PageNumber,
			f.Rect.X, f.Rect.Y, f.Rect.Width, f.Rect.Height, f.Label)
	}
}

// parseSignatory parses a 'Name <email> (role)' argument. An argument
// without angle brackets is treated as a bare name.
func parseSignatory(arg string) field.Signatory {
	m := signatoryPattern.FindStringSubmatch(strings.TrimSpace(arg))
	if m == nil {
		return field.Signatory{Name: strings.TrimSpace(arg)}
	}
	return field.Signatory{
		Name:  strings.TrimSpace(m[1]),
		Email: strings.TrimSpace(m[2]),
		Role:  strings.TrimSpace(m[3]),
	}
}
