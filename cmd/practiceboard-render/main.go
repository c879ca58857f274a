package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/meltforce/practiceboard/internal/catalog"
	"github.com/meltforce/practiceboard/internal/configsrc"
	"github.com/meltforce/practiceboard/internal/export"
	"github.com/meltforce/practiceboard/internal/overlap"
	"github.com/meltforce/practiceboard/internal/plan"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	// Flag defaults come from the environment; a missing .env is fine.
	_ = godotenv.Load()

	planPath := flag.String("plan", "", "path to plan JSON")
	outDir := flag.String("out", ".", "directory the JPEG is written to")
	fontPath := flag.String("font", os.Getenv("PRACTICEBOARD_EXPORT_FONT_PATH"), "TrueType/OpenType font for the export")
	catalogSrc := flag.String("catalog", os.Getenv("PRACTICEBOARD_CATALOG_SOURCE"), "menu catalog file or URL (built-in menus when empty)")
	quality := flag.Int("quality", export.DefaultQuality, "JPEG quality 1-100")
	dryRun := flag.Bool("dry-run", false, "print the timetable and overlaps but don't write the JPEG")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("practiceboard-render", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *planPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: practiceboard-render -plan <plan.json> [-out DIR] [-font FILE] [-catalog SRC] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*planPath)
	if err != nil {
		log.Error("failed to read plan", "path", *planPath, "error", err)
		os.Exit(1)
	}
	p, err := plan.Parse(data)
	if err != nil {
		log.Error("invalid plan", "path", *planPath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cat := catalog.New(configsrc.Open(*catalogSrc), log)
	cat.Load(ctx)

	s, err := p.Build(cat.Lookup, time.Now())
	if err != nil {
		log.Error("failed to build schedule", "error", err)
		os.Exit(1)
	}

	if err := plan.Preview(os.Stdout, s); err != nil {
		log.Error("failed to print timetable", "error", err)
		os.Exit(1)
	}

	if err := overlap.Check(s); err != nil {
		var v *overlap.Violation
		if errors.As(err, &v) {
			fmt.Fprintf(os.Stderr, "\nExport refused: %d overlapping pair(s)\n", len(v.Pairs))
			for _, pair := range v.Pairs {
				fmt.Fprintf(os.Stderr, "  - %s\n", v.Describe(pair))
			}
		}
		os.Exit(1)
	}

	if *dryRun {
		log.Info("dry run: no overlaps, JPEG not written")
		return
	}

	renderer, err := export.NewRenderer(*fontPath, *quality)
	if err != nil {
		log.Error("failed to load font", "path", *fontPath, "error", err)
		os.Exit(1)
	}

	var buf bytes.Buffer
	name, err := renderer.Export(&buf, s, cat.Category)
	if err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Error("failed to create output dir", "dir", *outDir, "error", err)
		os.Exit(1)
	}
	out := filepath.Join(*outDir, name)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		log.Error("failed to write JPEG", "path", out, "error", err)
		os.Exit(1)
	}
	log.Info("export written", "path", out, "size", humanize.Bytes(uint64(buf.Len())), "blocks", len(s.Blocks()))
}
