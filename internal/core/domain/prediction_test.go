package domain

import (
	"errors"
	"testing"
)

func melanomaResult() PredictionResult {
	return PredictionResult{
		PredictedClass: LabelMelanoma,
		Confidence:     0.87,
		Probabilities: map[ClassLabel]float64{
			"akiec": 0.01, "bcc": 0.02, "bkl": 0.03, "df": 0.01,
			"mel": 0.87, "nv": 0.04, "vasc": 0.02,
		},
	}
}

func TestCatalogHasNameForEveryKnownClass(t *testing.T) {
	catalog := HAM10000Catalog()
	if catalog.Len() != 7 {
		t.Fatalf("expected 7 classes, got %d", catalog.Len())
	}
	for _, label := range []ClassLabel{"akiec", "bcc", "bkl", "df", "mel", "nv", "vasc"} {
		name, err := catalog.DisplayName(label)
		if err != nil {
			t.Fatalf("DisplayName(%q) error = %v", label, err)
		}
		if name == "" {
			t.Fatalf("expected non-empty name for %q", label)
		}
	}
}

func TestDisplayNameUnknownLabel(t *testing.T) {
	_, err := HAM10000Catalog().DisplayName("xyz")
	if !IsKind(err, ErrUnknownClassLabel) {
		t.Fatalf("expected ErrUnknownClassLabel, got %v", err)
	}
}

func TestNewLabelCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewLabelCatalog([]ClassInfo{{Label: "mel", Name: "Melanoma"}, {Label: "mel", Name: "Again"}})
	if !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCatalogEntriesAreCopies(t *testing.T) {
	catalog := HAM10000Catalog()
	entries := catalog.Entries()
	entries[0].Name = "changed"
	if name, _ := catalog.DisplayName(entries[0].Label); name == "changed" {
		t.Fatalf("catalog mutated through Entries()")
	}
}

func TestNewDiagnosisMelanomaScenario(t *testing.T) {
	d, err := NewDiagnosis(HAM10000Catalog(), melanomaResult(), 0.01)
	if err != nil {
		t.Fatalf("NewDiagnosis() error = %v", err)
	}
	if got := d.Headline(); got != "MEL — Melanoma" {
		t.Fatalf("unexpected headline %q", got)
	}
	if got := d.ConfidenceText(); got != "0.8700" {
		t.Fatalf("unexpected confidence text %q", got)
	}
	if len(d.Bars) != 7 {
		t.Fatalf("expected 7 bars, got %d", len(d.Bars))
	}
	if d.Bars[0].Label != LabelActinicKeratoses || d.Bars[6].Label != LabelVascularLesions {
		t.Fatalf("bars not in catalog order: %+v", d.Bars)
	}
	bar, ok := d.Bar(LabelMelanoma)
	if !ok || bar.Value != 0.87 {
		t.Fatalf("expected mel bar at 0.87, got %+v", bar)
	}
	if d.ConfidenceMismatch {
		t.Fatalf("did not expect mismatch flag")
	}
}

func TestNewDiagnosisFlagsButKeepsInconsistentConfidence(t *testing.T) {
	result := melanomaResult()
	result.Confidence = 0.5

	d, err := NewDiagnosis(HAM10000Catalog(), result, 0.01)
	if err != nil {
		t.Fatalf("NewDiagnosis() error = %v", err)
	}
	if !d.ConfidenceMismatch {
		t.Fatalf("expected mismatch flag")
	}
	if d.Result.Confidence != 0.5 {
		t.Fatalf("confidence must not be rewritten, got %v", d.Result.Confidence)
	}
}

func TestNewDiagnosisUnknownPredictedClass(t *testing.T) {
	result := melanomaResult()
	result.PredictedClass = "xyz"

	_, err := NewDiagnosis(HAM10000Catalog(), result, 0.01)
	if !errors.Is(err, ErrUnknownClassLabel) {
		t.Fatalf("expected ErrUnknownClassLabel, got %v", err)
	}
}

func TestNewDiagnosisAppendsUnknownProbabilityKeys(t *testing.T) {
	result := melanomaResult()
	result.Probabilities["zzz"] = 0
	result.Probabilities["aaa"] = 0

	d, err := NewDiagnosis(HAM10000Catalog(), result, 0.01)
	if err != nil {
		t.Fatalf("NewDiagnosis() error = %v", err)
	}
	if len(d.Bars) != 9 || d.Bars[7].Label != "aaa" || d.Bars[8].Label != "zzz" {
		t.Fatalf("unexpected bars: %+v", d.Bars)
	}
}

func TestErrorKind(t *testing.T) {
	err := WrapError(ErrServiceFailure, "classify", errors.New("status 500"))
	if ErrorKind(err) != ErrServiceFailure {
		t.Fatalf("expected ErrServiceFailure, got %v", ErrorKind(err))
	}
	if ErrorKind(WrapError(ErrCanceled, "classify", errors.New("context canceled"))) != ErrCanceled {
		t.Fatalf("expected ErrCanceled kind")
	}
	if ErrorKind(errors.New("plain")) != nil {
		t.Fatalf("expected nil kind for plain error")
	}
}
