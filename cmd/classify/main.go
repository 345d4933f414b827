package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/skinlens/lesion-dashboard/internal/bootstrap"
	"github.com/skinlens/lesion-dashboard/internal/config"
	"github.com/skinlens/lesion-dashboard/internal/core/domain"
	"github.com/skinlens/lesion-dashboard/internal/observability/logging"
)

const barWidth = 40

func main() {
	imagePath := flag.String("image", "", "path to a JPG or PNG lesion image")
	format := flag.String("format", "text", "output format: text, json or xlsx")
	outPath := flag.String("out", "", "output file (default stdout; required for xlsx)")
	flag.Parse()

	if err := run(*imagePath, *format, *outPath); err != nil {
		fmt.Fprintln(os.Stderr, "classify:", err)
		os.Exit(1)
	}
}

func run(imagePath, format, outPath string) error {
	if imagePath == "" {
		return fmt.Errorf("-image is required")
	}
	switch format {
	case "text", "json":
	case "xlsx":
		if outPath == "" {
			return fmt.Errorf("-out is required for xlsx output")
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(os.Stderr, "classify", cfg.LogLevel))

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	app, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := app.PredictUC.Predict(ctx, filepath.Base(imagePath), image)
	if err != nil {
		return err
	}

	return writeOutput(outPath, func(out io.Writer) error {
		switch format {
		case "text":
			return writeText(out, d)
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		default:
			data, err := app.Exporter.Export(d)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}
	})
}

// writeOutput runs write against stdout, or against path when set. A failed
// close is reported since it may hide an unflushed write.
func writeOutput(path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(os.Stdout)
	}
	f, createErr := os.Create(path)
	if createErr != nil {
		return fmt.Errorf("create output: %w", createErr)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()
	return write(f)
}

// writeText prints the headline followed by one horizontal bar per class.
func writeText(w io.Writer, d *domain.Diagnosis) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Prediction: %s\n", d.Headline())
	fmt.Fprintf(&b, "Confidence: %s\n", d.ConfidenceText())
	if d.ConfidenceMismatch {
		b.WriteString("Warning: confidence does not match the predicted class probability\n")
	}
	b.WriteString("\n")
	for _, bar := range d.Bars {
		n := int(min(max(bar.Value, 0), 1)*barWidth + 0.5)
		marker := " "
		if bar.Label == d.Result.PredictedClass {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %-6s %-*s %.4f\n", marker, bar.Label, barWidth, strings.Repeat("#", n), bar.Value)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
