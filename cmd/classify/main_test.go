package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
)

func TestWriteTextRendersBars(t *testing.T) {
	d, err := domain.NewDiagnosis(domain.HAM10000Catalog(), domain.PredictionResult{
		PredictedClass: domain.LabelMelanoma,
		Confidence:     0.87,
		Probabilities:  map[domain.ClassLabel]float64{"mel": 0.87, "nv": 0.13},
	}, 0.01)
	if err != nil {
		t.Fatalf("NewDiagnosis() error = %v", err)
	}

	var buf bytes.Buffer
	if err := writeText(&buf, d); err != nil {
		t.Fatalf("writeText() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Prediction: MEL — Melanoma") || !strings.Contains(out, "Confidence: 0.8700") {
		t.Fatalf("missing headline:\n%s", out)
	}
	if !strings.Contains(out, "* mel    "+strings.Repeat("#", 35)) {
		t.Fatalf("expected 35-char bar for mel:\n%s", out)
	}
	if !strings.Contains(out, "  nv     "+strings.Repeat("#", 5)+" ") {
		t.Fatalf("expected 5-char bar for nv:\n%s", out)
	}
}

func TestRunValidatesFlags(t *testing.T) {
	if err := run("", "text", ""); err == nil {
		t.Fatalf("expected error without -image")
	}
	if err := run("lesion.jpg", "xlsx", ""); err == nil {
		t.Fatalf("expected error for xlsx without -out")
	}
	if err := run("lesion.jpg", "csv", ""); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestWriteOutputWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	err := writeOutput(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "mel 0.87")
		return err
	})
	if err != nil {
		t.Fatalf("writeOutput() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "mel 0.87" {
		t.Fatalf("unexpected file content %q", got)
	}
}

func TestWriteOutputReportsFailures(t *testing.T) {
	errWrite := errors.New("disk full")
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := writeOutput(path, func(io.Writer) error { return errWrite }); !errors.Is(err, errWrite) {
		t.Fatalf("expected write error, got %v", err)
	}

	missingDir := filepath.Join(t.TempDir(), "missing", "out.txt")
	if err := writeOutput(missingDir, func(io.Writer) error { return nil }); err == nil {
		t.Fatalf("expected error creating output in missing directory")
	}
}
