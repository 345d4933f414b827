package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
)

const (
	probabilitySheet = "Probabilities"
	summarySheet     = "Summary"
	probabilityFmt   = "0.0000"
)

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *Exporter) FileExtension() string {
	return ".xlsx"
}

// Export writes a summary sheet and a probability table with a column chart.
func (e *Exporter) Export(d *domain.Diagnosis) ([]byte, error) {
	if d == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export xlsx", fmt.Errorf("diagnosis is nil"))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(probabilitySheet); err != nil {
		return nil, fmt.Errorf("create probability sheet: %w", err)
	}

	numFmt := probabilityFmt
	probStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, fmt.Errorf("create number style: %w", err)
	}

	if err := writeSummary(f, d, probStyle); err != nil {
		return nil, err
	}
	if err := writeProbabilities(f, d, probStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, d *domain.Diagnosis, probStyle int) error {
	rows := [][]any{
		{"Predicted class", strings.ToUpper(string(d.Result.PredictedClass))},
		{"Diagnosis", d.DisplayName},
		{"Confidence", d.Result.Confidence},
		{"Confidence mismatch", d.ConfidenceMismatch},
		{"Note", "Educational use only. Not a substitute for a medical diagnosis."},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "B3", "B3", probStyle); err != nil {
		return fmt.Errorf("style confidence: %w", err)
	}
	return f.SetColWidth(summarySheet, "A", "A", 22)
}

func writeProbabilities(f *excelize.File, d *domain.Diagnosis, probStyle int) error {
	header := []any{"Class", "Diagnosis", "Probability"}
	if err := f.SetSheetRow(probabilitySheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, bar := range d.Bars {
		row := []any{string(bar.Label), bar.Name, bar.Value}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(probabilitySheet, cell, &row); err != nil {
			return fmt.Errorf("write probability row %d: %w", i+2, err)
		}
	}
	if len(d.Bars) == 0 {
		return nil
	}

	last := len(d.Bars) + 1
	if err := f.SetCellStyle(probabilitySheet, "C2", fmt.Sprintf("C%d", last), probStyle); err != nil {
		return fmt.Errorf("style probabilities: %w", err)
	}
	if err := f.SetColWidth(probabilitySheet, "B", "B", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	err := f.AddChart(probabilitySheet, "E2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$C$1", probabilitySheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", probabilitySheet, last),
			Values:     fmt.Sprintf("%s!$C$2:$C$%d", probabilitySheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Probability Distribution"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
	if err != nil {
		return fmt.Errorf("add chart: %w", err)
	}
	return nil
}
