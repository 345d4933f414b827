package domain

import (
	"fmt"
	"strings"
)

// ClassLabel is the short diagnosis code returned by the inference service.
type ClassLabel string

const (
	LabelActinicKeratoses   ClassLabel = "akiec"
	LabelBasalCellCarcinoma ClassLabel = "bcc"
	LabelBenignKeratosis    ClassLabel = "bkl"
	LabelDermatofibroma     ClassLabel = "df"
	LabelMelanoma           ClassLabel = "mel"
	LabelMelanocyticNevi    ClassLabel = "nv"
	LabelVascularLesions    ClassLabel = "vasc"
)

type ClassInfo struct {
	Label ClassLabel `json:"label"`
	Name  string     `json:"name"`
}

// LabelCatalog maps class codes to human-readable diagnosis names.
// A catalog is immutable once built.
type LabelCatalog struct {
	entries []ClassInfo
	names   map[ClassLabel]string
}

func NewLabelCatalog(entries []ClassInfo) (*LabelCatalog, error) {
	if len(entries) == 0 {
		return nil, WrapError(ErrInvalidInput, "new label catalog", fmt.Errorf("no entries"))
	}

	c := &LabelCatalog{
		entries: make([]ClassInfo, 0, len(entries)),
		names:   make(map[ClassLabel]string, len(entries)),
	}
	for _, e := range entries {
		label := ClassLabel(strings.TrimSpace(string(e.Label)))
		name := strings.TrimSpace(e.Name)
		if label == "" || name == "" {
			return nil, WrapError(ErrInvalidInput, "new label catalog", fmt.Errorf("empty code or name for %q", e.Label))
		}
		if _, dup := c.names[label]; dup {
			return nil, WrapError(ErrInvalidInput, "new label catalog", fmt.Errorf("duplicate code %q", label))
		}
		c.entries = append(c.entries, ClassInfo{Label: label, Name: name})
		c.names[label] = name
	}
	return c, nil
}

// HAM10000Catalog returns the seven lesion classes of the HAM10000 dataset.
func HAM10000Catalog() *LabelCatalog {
	c, err := NewLabelCatalog([]ClassInfo{
		{Label: LabelActinicKeratoses, Name: "Actinic Keratoses"},
		{Label: LabelBasalCellCarcinoma, Name: "Basal Cell Carcinoma"},
		{Label: LabelBenignKeratosis, Name: "Benign Keratosis"},
		{Label: LabelDermatofibroma, Name: "Dermatofibroma"},
		{Label: LabelMelanoma, Name: "Melanoma"},
		{Label: LabelMelanocyticNevi, Name: "Melanocytic Nevi"},
		{Label: LabelVascularLesions, Name: "Vascular Lesions"},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func (c *LabelCatalog) DisplayName(label ClassLabel) (string, error) {
	name, ok := c.names[label]
	if !ok {
		return "", WrapError(ErrUnknownClassLabel, "display name", fmt.Errorf("code=%q", label))
	}
	return name, nil
}

func (c *LabelCatalog) Contains(label ClassLabel) bool {
	_, ok := c.names[label]
	return ok
}

// Labels returns the codes in catalog order.
func (c *LabelCatalog) Labels() []ClassLabel {
	out := make([]ClassLabel, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.Label)
	}
	return out
}

func (c *LabelCatalog) Entries() []ClassInfo {
	out := make([]ClassInfo, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *LabelCatalog) Len() int {
	return len(c.entries)
}
