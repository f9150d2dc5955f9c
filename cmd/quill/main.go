package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nasdf/quill"
	"github.com/nasdf/quill/core"
	"github.com/nasdf/quill/node"
	"github.com/nasdf/quill/storage"
)

const usage = `usage: quill [-db dir] [-v] <command> [args]

commands:
  show             print the document as json
  log              print the applied batches as dag-json
  export <file>    write the document to a car archive
  import <file>    merge a car archive into the document
`

func main() {
	dir := flag.String("db", ".quill", "database directory")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	if err := run(context.Background(), os.Stdout, *dir, level, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "quill: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer, dir string, level slog.Level, args []string) error {
	db, err := storage.OpenPebble(dir, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	store := storage.NewPebble(db, false)
	opts := core.Options{Logger: core.NewDefaultLogger(level)}

	doc, err := quill.Open(ctx, store, opts)
	if err != nil {
		return err
	}
	switch args[0] {
	case "show":
		out, err := json.MarshalIndent(doc.Snapshot(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, string(out))
		return nil

	case "log":
		for _, b := range doc.Batches() {
			n, err := b.Node()
			if err != nil {
				return err
			}
			out, err := node.EncodeJSON(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(out))
		}
		return nil

	case "export":
		if len(args) != 2 {
			return fmt.Errorf("export requires a file name")
		}
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		return doc.Export(ctx, f)

	case "import":
		if len(args) != 2 {
			return fmt.Errorf("import requires a file name")
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		other, err := core.Import(ctx, f, core.Options{Logger: opts.Logger})
		if err != nil {
			return err
		}
		if _, err := doc.Merge(other); err != nil {
			return err
		}
		_, err = quill.Save(ctx, store, doc)
		return err

	default:
		return fmt.Errorf("unknown command %s", args[0])
	}
}
