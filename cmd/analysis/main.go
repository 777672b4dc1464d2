// Command analysis replays the protocol across many seeds and writes the
// CHSH distribution as an HTML histogram page plus a JSON stats file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rs/zerolog"

	"qezk/protocol"
	"qezk/quantum"
	"qezk/sim"
)

type summaryStats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	IQR      float64 `json:"iqr"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis_excess"`
}

// ------------------------------ stats utilities ------------------------------

func computeStats(x []float64) summaryStats {
	n := len(x)
	if n == 0 {
		return summaryStats{}
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	minv, maxv := cp[0], cp[n-1]
	median := quantileSorted(cp, 0.5)
	q1 := quantileSorted(cp, 0.25)
	q3 := quantileSorted(cp, 0.75)
	iqr := q3 - q1
	var m float64
	for _, v := range x {
		m += v
	}
	m /= float64(n)
	var m2, m3, m4 float64
	for _, v := range x {
		d := v - m
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	var std, skew, kurtEx float64
	if n > 1 {
		std = math.Sqrt(m2 / float64(n-1))
	}
	if std > 0 {
		m2n := m2 / float64(n)
		m3n := m3 / float64(n)
		m4n := m4 / float64(n)
		skew = m3n / math.Pow(m2n, 1.5)
		kurtEx = m4n/m2n/m2n - 3.0
	}
	return summaryStats{Count: n, Mean: m, Std: std, Min: minv, Q1: q1, Median: median, Q3: q3, Max: maxv, IQR: iqr, Skewness: skew, Kurtosis: kurtEx}
}

func quantileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	l := int(math.Floor(pos))
	r := int(math.Ceil(pos))
	if l == r {
		return sorted[l]
	}
	w := pos - float64(l)
	return sorted[l]*(1-w) + sorted[r]*w
}

func computeHistogram(values []float64, nbins int) (edges []float64, counts []int) {
	if len(values) == 0 {
		return []float64{0, 1}, []int{0}
	}
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	minv, maxv := cp[0], cp[len(cp)-1]
	if nbins < 1 {
		nbins = 1
	}
	width := (maxv - minv) / float64(nbins)
	if width <= 0 {
		width = 1
	}
	edges = make([]float64, nbins+1)
	for i := 0; i <= nbins; i++ {
		edges[i] = minv + float64(i)*width
	}
	counts = make([]int, nbins)
	for _, v := range values {
		idx := int(math.Floor((v - minv) / width))
		if idx < 0 {
			idx = 0
		}
		if idx >= nbins {
			idx = nbins - 1
		}
		counts[idx]++
	}
	return
}

// ------------------------- plotting: go-echarts HTML -------------------------

func toBarItems(vals []int) []opts.BarData {
	out := make([]opts.BarData, len(vals))
	for i, v := range vals {
		out[i] = opts.BarData{Value: v}
	}
	return out
}

func newHistogramChart(title string, values []float64, stats summaryStats) *charts.Bar {
	nbins := 30
	if len(values) < nbins {
		nbins = len(values)
	}
	edges, counts := computeHistogram(values, nbins)
	xLabels := make([]string, len(counts))
	for i := range counts {
		center := 0.5 * (edges[i] + edges[i+1])
		xLabels[i] = fmt.Sprintf("%.3f", center)
	}
	bar := charts.NewBar()
	subtitle := fmt.Sprintf("n=%d, mean=%.4f, std=%.4f, median=%.4f, IQR=%.4f", stats.Count, stats.Mean, stats.Std, stats.Median, stats.IQR)
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(xLabels).
		AddSeries("count", toBarItems(counts)).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ------------------------------- main routine -------------------------------

func main() {
	statement := flag.String("statement", "benchmark statement", "statement to prove")
	witness := flag.String("witness", "1010", "witness bit string")
	trials := flag.Int("trials", 50, "number of proof trials")
	pairs := flag.Int("pairs", 2000, "EPR pairs per trial")
	threshold := flag.Float64("threshold", 2.2, "CHSH acceptance threshold")
	baseSeed := flag.Int64("seed", 1, "base seed; trial t uses seed+t")
	outDir := flag.String("out", "Measure_Reports", "output directory for reports")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	cfg := protocol.Config{
		PairCount:     *pairs,
		CHSHThreshold: *threshold,
		BellKind:      quantum.PhiPlus,
	}
	runner, err := sim.NewRunner(cfg, zerolog.New(os.Stderr).With().Timestamp().Logger())
	if err != nil {
		log.Fatalf("runner: %v", err)
	}

	log.Printf("[analysis] %d trials, %d pairs each", *trials, *pairs)
	report, err := runner.RunTrials(*statement, *witness, *trials, *baseSeed)
	if err != nil {
		log.Fatalf("trials: %v", err)
	}

	// Reference run with an all-zero witness of the same length, showing
	// the identity-gate CHSH distribution next to the witness-shifted one.
	zeroWitness := make([]byte, len(*witness))
	for i := range zeroWitness {
		zeroWitness[i] = '0'
	}
	zeroReport, err := runner.RunTrials(*statement, string(zeroWitness), *trials, *baseSeed)
	if err != nil {
		log.Fatalf("reference trials: %v", err)
	}

	outStats := map[string]summaryStats{
		"chsh_witness":   computeStats(report.CHSHValues),
		"chsh_reference": computeStats(zeroReport.CHSHValues),
	}

	ts := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("chsh_stats_%s.json", ts))
	if err := saveJSON(jsonPath, map[string]any{
		"config":    cfg,
		"stats":     outStats,
		"witness":   report,
		"reference": zeroReport,
	}); err != nil {
		log.Printf("warn: save stats: %v", err)
	}

	page := components.NewPage()
	page.AddCharts(newHistogramChart("CHSH (witness run)", report.CHSHValues, outStats["chsh_witness"]))
	page.AddCharts(newHistogramChart("CHSH (all-zero reference)", zeroReport.CHSHValues, outStats["chsh_reference"]))

	htmlPath := filepath.Join(*outDir, fmt.Sprintf("chsh_histograms_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Println("Histogram page:", htmlPath)
	fmt.Println("Stats JSON:", jsonPath)
}
