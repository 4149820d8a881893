// cmd/boardctl configures boards against a running autoboard server.
//
//	boardctl apply -f board.yaml [-server http://localhost:8000]
//	boardctl field-types
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/client"
	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/logging"
	"github.com/matthewbaird/autoboard/internal/wizard"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("boardctl: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "apply":
		err = runApply(os.Args[2:])
	case "field-types":
		printFieldTypes(os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: boardctl apply -f board.yaml [-server URL] | boardctl field-types")
}

func runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	file := fs.String("f", "", "board definition (YAML)")
	server := fs.String("server", envOr("AUTOBOARD_URL", "http://localhost:8000"), "autoboard server URL")
	timeout := fs.Duration("timeout", 30*time.Second, "per-request timeout")
	verbose := fs.Bool("v", false, "log requests")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("apply: -f is required")
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console", "boardctl")
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	def, err := loadDefinition(*file)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := wizard.New(client.New(*server, *timeout, logger))
	id, err := apply(ctx, w, def)
	if err != nil {
		logger.Debug("apply stopped", zap.String("state", string(w.State())), zap.Error(err))
		if id != 0 {
			return fmt.Errorf("board %d: %w", id, err)
		}
		return err
	}
	fmt.Printf("board %d configured: %s/boards/%d\n", id, *server, id)
	return nil
}

func printFieldTypes(out io.Writer) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATA TYPE\tSQL\tELEMENT\tDISPLAY")
	for _, dt := range fieldtype.DataTypes() {
		name := string(dt.Value)
		if dt.Alias {
			name += " (alias)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, dt.SQLType, dt.Element, dt.Display)
	}
	tw.Flush()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
