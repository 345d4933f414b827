package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// PredictionResult is the parsed body of a successful inference response.
type PredictionResult struct {
	PredictedClass ClassLabel             `json:"predicted_class"`
	Confidence     float64                `json:"confidence"`
	Probabilities  map[ClassLabel]float64 `json:"probabilities"`
}

type ProbabilityBar struct {
	Label ClassLabel `json:"label"`
	Name  string     `json:"name,omitempty"`
	Value float64    `json:"value"`
}

// Diagnosis is a PredictionResult resolved against a label catalog for display.
type Diagnosis struct {
	Result             PredictionResult `json:"result"`
	DisplayName        string           `json:"display_name"`
	Bars               []ProbabilityBar `json:"bars"`
	ConfidenceMismatch bool             `json:"confidence_mismatch"`
}

// NewDiagnosis resolves the predicted label and orders the probability bars.
// Values are carried over unchanged; an inconsistent confidence is only flagged.
func NewDiagnosis(catalog *LabelCatalog, result PredictionResult, tolerance float64) (*Diagnosis, error) {
	name, err := catalog.DisplayName(result.PredictedClass)
	if err != nil {
		return nil, err
	}

	return &Diagnosis{
		Result:             result,
		DisplayName:        name,
		Bars:               orderedBars(catalog, result.Probabilities),
		ConfidenceMismatch: confidenceMismatch(result, tolerance),
	}, nil
}

func (d *Diagnosis) Headline() string {
	return fmt.Sprintf("%s — %s", strings.ToUpper(string(d.Result.PredictedClass)), d.DisplayName)
}

func (d *Diagnosis) ConfidenceText() string {
	return fmt.Sprintf("%.4f", d.Result.Confidence)
}

// Bar returns the bar for label, if present.
func (d *Diagnosis) Bar(label ClassLabel) (ProbabilityBar, bool) {
	for _, b := range d.Bars {
		if b.Label == label {
			return b, true
		}
	}
	return ProbabilityBar{}, false
}

// orderedBars lists known classes in catalog order, then unknown keys sorted.
func orderedBars(catalog *LabelCatalog, probs map[ClassLabel]float64) []ProbabilityBar {
	bars := make([]ProbabilityBar, 0, len(probs))
	for _, e := range catalog.Entries() {
		v, ok := probs[e.Label]
		if !ok {
			continue
		}
		bars = append(bars, ProbabilityBar{Label: e.Label, Name: e.Name, Value: v})
	}

	var extra []ClassLabel
	for label := range probs {
		if !catalog.Contains(label) {
			extra = append(extra, label)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, label := range extra {
		bars = append(bars, ProbabilityBar{Label: label, Value: probs[label]})
	}
	return bars
}

func confidenceMismatch(result PredictionResult, tolerance float64) bool {
	p, ok := result.Probabilities[result.PredictedClass]
	if !ok {
		return true
	}
	if tolerance < 0 {
		tolerance = 0
	}
	return math.Abs(p-result.Confidence) > tolerance
}
