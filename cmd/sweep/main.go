// Command sweep maps mean CHSH and acceptance rate across pair counts,
// rendering a line chart of convergence toward the Tsirelson bound.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rs/zerolog"

	"qezk/measure"
	"qezk/protocol"
	"qezk/quantum"
	"qezk/sim"
)

type sweepRow struct {
	PairCount   int     `json:"pair_count"`
	Trials      int     `json:"trials"`
	MeanCHSH    float64 `json:"mean_chsh"`
	StdCHSH     float64 `json:"std_chsh"`
	SuccessRate float64 `json:"success_rate"`
	ElapsedMS   int64   `json:"elapsed_ms"`
}

func parsePairCounts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("pair count %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func toLineItems(vals []float64) []opts.LineData {
	out := make([]opts.LineData, len(vals))
	for i, v := range vals {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func main() {
	statement := flag.String("statement", "sweep statement", "statement to prove")
	witness := flag.String("witness", "", "witness bit string (empty = all identity)")
	counts := flag.String("pairs", "64,128,256,512,1024,2048,4096", "comma-separated pair counts")
	trials := flag.Int("trials", 20, "trials per pair count")
	threshold := flag.Float64("threshold", 2.2, "CHSH acceptance threshold")
	baseSeed := flag.Int64("seed", 1, "base seed")
	outDir := flag.String("out", "Measure_Reports", "output directory")
	flag.Parse()

	pairCounts, err := parsePairCounts(*counts)
	if err != nil {
		log.Fatalf("parse pairs: %v", err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	rows := make([]sweepRow, 0, len(pairCounts))
	for _, pc := range pairCounts {
		cfg := protocol.Config{
			PairCount:     pc,
			CHSHThreshold: *threshold,
			BellKind:      quantum.PhiPlus,
		}
		runner, err := sim.NewRunner(cfg, logger)
		if err != nil {
			log.Fatalf("runner (pairs=%d): %v", pc, err)
		}
		start := time.Now()
		rep, err := runner.RunTrials(*statement, *witness, *trials, *baseSeed)
		if err != nil {
			log.Fatalf("trials (pairs=%d): %v", pc, err)
		}
		rows = append(rows, sweepRow{
			PairCount:   pc,
			Trials:      *trials,
			MeanCHSH:    rep.MeanCHSH,
			StdCHSH:     rep.StdCHSH,
			SuccessRate: rep.SuccessRate,
			ElapsedMS:   time.Since(start).Milliseconds(),
		})
		log.Printf("[sweep] pairs=%d mean=%.4f std=%.4f rate=%.2f", pc, rep.MeanCHSH, rep.StdCHSH, rep.SuccessRate)
	}

	ts := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("chsh_sweep_%s.json", ts))
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		log.Fatalf("encode rows: %v", err)
	}
	if err := os.WriteFile(jsonPath, b, 0o644); err != nil {
		log.Fatalf("write json: %v", err)
	}

	xLabels := make([]string, len(rows))
	means := make([]float64, len(rows))
	rates := make([]float64, len(rows))
	tsirelson := make([]float64, len(rows))
	classical := make([]float64, len(rows))
	for i, r := range rows {
		xLabels[i] = strconv.Itoa(r.PairCount)
		means[i] = r.MeanCHSH
		rates[i] = r.SuccessRate
		tsirelson[i] = measure.TsirelsonBound
		classical[i] = measure.ClassicalBound
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "CHSH convergence vs. pair count",
			Subtitle: fmt.Sprintf("trials=%d, threshold=%.2f", *trials, *threshold),
		}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "CHSH sweep", Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xLabels).
		AddSeries("mean CHSH", toLineItems(means)).
		AddSeries("acceptance rate", toLineItems(rates)).
		AddSeries("Tsirelson bound", toLineItems(tsirelson)).
		AddSeries("classical bound", toLineItems(classical))

	page := components.NewPage().SetPageTitle("CHSH sweep")
	page.AddCharts(line)

	htmlPath := filepath.Join(*outDir, fmt.Sprintf("chsh_sweep_%s.html", ts))
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatalf("create html: %v", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatalf("render html: %v", err)
	}
	fmt.Println("Sweep page:", htmlPath)
	fmt.Println("Sweep JSON:", jsonPath)
}
