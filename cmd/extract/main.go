// Command extract runs the extraction pipeline over image files and prints
// the resulting word list, optionally writing CSV and PDF wordbooks.
//
//	extract [-mode local|remote] [-min-length 2] [-case lower|upper|none]
//	        [-auto-fill] [-csv out.csv] [-pdf out.pdf -layout list] image...
//
// Exit codes: 0 = success, 1 = error, 2 = usage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/vocabscan/internal/app"
	"github.com/heartmarshall/vocabscan/internal/config"
	"github.com/heartmarshall/vocabscan/internal/domain"
	"github.com/heartmarshall/vocabscan/internal/provider"
	"github.com/heartmarshall/vocabscan/internal/service/export"
	"github.com/heartmarshall/vocabscan/internal/service/pipeline"
)

func main() {
	mode := flag.String("mode", "", "recognition mode: local or remote (default: remote when configured)")
	minLength := flag.Int("min-length", 0, "minimum word length (default from config)")
	caseMode := flag.String("case", "", "case mode: lower, upper or none (default from config)")
	autoFill := flag.Bool("auto-fill", false, "fill missing meanings from the dictionary")
	csvPath := flag.String("csv", "", "write a CSV wordbook to this path")
	pdfPath := flag.String("pdf", "", "write a PDF wordbook to this path")
	layout := flag.String("layout", string(domain.LayoutList), "PDF layout: list, flashcards or worksheet")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: extract [flags] image...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		Mode:      domain.RecognitionMode(*mode),
		MinLength: *minLength,
		CaseMode:  domain.CaseMode(*caseMode),
		AutoFill:  *autoFill || cfg.Pipeline.AutoFill,
	}
	if err := run(ctx, cfg, logger, flag.Args(), opts, *csvPath, *pdfPath, domain.Layout(*layout)); err != nil {
		logger.Error("extract failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, paths []string, opts pipeline.Options, csvPath, pdfPath string, layout domain.Layout) error {
	if pdfPath != "" && !layout.IsValid() {
		return fmt.Errorf("invalid layout %q", layout)
	}

	images, err := readImages(paths)
	if err != nil {
		return err
	}

	c, err := app.Build(cfg, logger)
	if err != nil {
		return err
	}

	res, err := c.Pipeline.Analyze(ctx, images, opts)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		logger.Warn("pipeline warning",
			slog.String("stage", string(w.Stage)),
			slog.String("subject", w.Subject),
			slog.String("message", w.Message),
		)
	}

	if err := printEntries(os.Stdout, res.Entries, c.Pipeline.Threshold()); err != nil {
		return err
	}

	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return export.WriteCSV(w, res.Entries) }); err != nil {
			return err
		}
		logger.Info("csv written", slog.String("path", csvPath))
	}
	if pdfPath != "" {
		if err := writeFile(pdfPath, func(w io.Writer) error { return c.Renderer.RenderPDF(w, res.Entries, layout) }); err != nil {
			return err
		}
		logger.Info("pdf written", slog.String("path", pdfPath), slog.String("layout", layout.String()))
	}
	return nil
}

func readImages(paths []string) ([]provider.Image, error) {
	images := make([]provider.Image, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		images = append(images, provider.Image{
			Name:     filepath.Base(p),
			MIMEType: http.DetectContentType(data),
			Data:     data,
		})
	}
	return images, nil
}

func printEntries(w io.Writer, entries []domain.Entry, threshold float64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tWORD\tCORRECTED\tMEANING\tCONFIDENCE\t")
	for i, e := range entries {
		conf := "-"
		if e.Confidence != nil {
			conf = strconv.FormatFloat(*e.Confidence, 'f', 2, 64)
		}
		if e.IsLowConfidence(threshold) {
			conf += " !"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", i+1, e.Word, e.CorrectedWord, e.Meaning(), conf)
	}
	return tw.Flush()
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := render(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
