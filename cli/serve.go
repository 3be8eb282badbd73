package cli

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/quillmark/fieldkit/archive"
	"github.com/quillmark/fieldkit/config"
	"github.com/quillmark/fieldkit/esign"
	"github.com/quillmark/fieldkit/httpapi"
)

// ServeCommand implements the 'serve' command.
func ServeCommand(args []string) {
	serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)

	configPath := serveFlags.String("config", "fieldkit.yaml", "Path to the configuration file")

	serveFlags.Usage = func() {
		fmt.Printf("Usage: %s serve [options]\n\n", os.Args[0])
		fmt.Println("Run the session HTTP server.")
		fmt.Println("")
		fmt.Println("Options:")
		serveFlags.PrintDefaults()
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Printf("  %s serve\n", os.Args[0])
		fmt.Printf("  %s serve -config /etc/fieldkit/fieldkit.yaml\n", os.Args[0])
	}

	if err := serveFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		osExit(1)
		return
	}

	log, err := cfg.Logging.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building logger: %v\n", err)
		osExit(1)
		return
	}
	defer log.Sync()

	client, err := esign.NewClient(esign.Config{
		BaseURL:    cfg.Esign.BaseURL,
		APIKey:     cfg.Esign.APIKey,
		Timeout:    cfg.Esign.Timeout(),
		MaxRetries: uint64(cfg.Esign.MaxRetries),
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building provider client: %v\n", err)
		osExit(1)
		return
	}

	arc, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening archive: %v\n", err)
		osExit(1)
		return
	}
	defer arc.Close()

	server := httpapi.NewServer(log, client, arc)

	log.Info("server starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("version", Version),
		zap.String("archive", cfg.Archive.Path))

	if err := http.ListenAndServe(cfg.Server.Addr, server.Handler()); err != nil {
		log.Error("server stopped", zap.Error(err))
		osExit(1)
	}
}
