// Command assign reads a dataset of agents and tickets, assigns every ticket
// and writes the results.
//
//	assign -in dataset.json -out output_result.json [-format json|xlsx]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alanyang/ticket-router/internal/adapter/dataset"
	"github.com/alanyang/ticket-router/internal/service/assigner"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("assign failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("assign", flag.ContinueOnError)
	in := fs.String("in", "dataset.json", "input dataset path")
	out := fs.String("out", "output_result.json", "output path")
	format := fs.String("format", "json", "output format: json or xlsx")
	if err := fs.Parse(args); err != nil {
		return err
	}

	write := dataset.WriteFile
	switch *format {
	case "json":
	case "xlsx":
		write = dataset.WriteXLSXFile
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	ds, err := dataset.ReadFile(*in)
	if err != nil {
		return err
	}

	records := assigner.Assign(ds.Agents, ds.Tickets)
	if err := write(*out, records); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Assigned %d tickets. Results in %s.\n", len(records), *out)
	return nil
}
