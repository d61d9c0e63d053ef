package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/domain/waitlist"
	"github.com/goccy/go-json"
)

type command struct {
	store     waitlist.Store
	stdout    io.Writer
	now       func() time.Time
	exportDir string
}

func (c *command) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "export":
		return c.export(ctx, args)
	case "stats":
		return c.stats(ctx)
	case "clear":
		return c.clear(ctx, args)
	}
	return fmt.Errorf("unknown command: %s", name)
}

func (c *command) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rawFormat := fs.String("format", "json", "json or csv")
	out := fs.String("out", "", "destination file, - for stdout (default <export dir>/pledg_waitlist_<date>.<ext>)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	format, err := waitlist.ParseExportFormat(*rawFormat)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if format == waitlist.ExportFormatCSV {
		err = c.store.ExportCSV(ctx, &buf)
	} else {
		err = c.store.Export(ctx, &buf)
	}
	if err != nil {
		return err
	}

	if *out == "-" {
		_, err := c.stdout.Write(buf.Bytes())
		return err
	}

	path := *out
	if path == "" {
		path = filepath.Join(c.exportDir, format.FileName(c.now()))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Fprintln(c.stdout, path)
	return nil
}

func (c *command) stats(ctx context.Context) error {
	data, err := json.MarshalIndent(c.store.Stats(ctx), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, string(data))
	return err
}

func (c *command) clear(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "confirm removal of every entry")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if !*yes {
		return fmt.Errorf("clear: refusing to remove every entry without --yes")
	}

	if !c.store.ClearAll(ctx) {
		return fmt.Errorf("clear: storage write failed")
	}
	fmt.Fprintln(c.stdout, "waitlist cleared")
	return nil
}
