package httpadapter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/skinlens/lesion-dashboard/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"upper": func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
}).ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Title         string
	Active        string
	Classes       []domain.ClassInfo
	Diagnosis     *domain.Diagnosis
	Chart         *barChart
	Filename      string
	Error         string
	MaxUploadMB   int64
	ExportEnabled bool
}

func (rt *Router) overviewPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, r, errNotFound)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, r, errMethodNotAllowed)
		return
	}
	render(w, r, http.StatusOK, "overview.html", rt.page("Dataset & Project Overview", "overview"))
}

func (rt *Router) modelPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, errMethodNotAllowed)
		return
	}
	render(w, r, http.StatusOK, "model.html", rt.page("Model Explanation", "model"))
}

func (rt *Router) predictPage(w http.ResponseWriter, r *http.Request) {
	data := rt.page("Skin Lesion Prediction", "predict")

	switch r.Method {
	case http.MethodGet:
		render(w, r, http.StatusOK, "predict.html", data)
	case http.MethodPost:
		d, err := rt.predictUpload(w, r, "form")
		if err != nil {
			data.Error = userMessage(err)
			render(w, r, mapErrorToHTTPStatus(err), "predict.html", data)
			return
		}
		data.Diagnosis = d
		data.Chart = newBarChart(d)
		render(w, r, http.StatusOK, "predict.html", data)
	default:
		writeError(w, r, errMethodNotAllowed)
	}
}

func (rt *Router) page(title, active string) pageData {
	maxBytes := rt.cfg.UploadMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxBytes
	}
	return pageData{
		Title:         title,
		Active:        active,
		Classes:       rt.diagnoser.Catalog().Entries(),
		MaxUploadMB:   maxBytes >> 20,
		ExportEnabled: rt.exporter != nil,
	}
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render(w, r, status, "error.html", pageData{Title: http.StatusText(status), Error: message})
}

func render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "render_template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

const (
	chartTop        = 20.0
	chartPlotHeight = 240.0
	chartSlot       = 72.0
	chartBarWidth   = 48.0
	chartAxisSpace  = 40.0
)

type chartBar struct {
	Label       string
	Name        string
	ValueText   string
	X           float64
	Y           float64
	Width       float64
	Height      float64
	LabelX      float64
	FillOpacity float64
	Predicted   bool
}

type barChart struct {
	Width    float64
	Height   float64
	Baseline float64
	Bars     []chartBar
}

// newBarChart lays out one SVG bar per probability; bar height is proportional
// to the probability on a fixed [0, 1] axis.
func newBarChart(d *domain.Diagnosis) *barChart {
	chart := &barChart{
		Width:    chartSlot * float64(max(len(d.Bars), 1)),
		Height:   chartTop + chartPlotHeight + chartAxisSpace,
		Baseline: chartTop + chartPlotHeight,
	}
	for i, b := range d.Bars {
		v := min(max(b.Value, 0), 1)
		h := v * chartPlotHeight
		x := float64(i)*chartSlot + (chartSlot-chartBarWidth)/2
		chart.Bars = append(chart.Bars, chartBar{
			Label:       string(b.Label),
			Name:        b.Name,
			ValueText:   strconv.FormatFloat(b.Value, 'f', -1, 64),
			X:           x,
			Y:           chartTop + chartPlotHeight - h,
			Width:       chartBarWidth,
			Height:      h,
			LabelX:      x + chartBarWidth/2,
			FillOpacity: 0.3 + 0.7*v,
			Predicted:   b.Label == d.Result.PredictedClass,
		})
	}
	return chart
}
