package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/sirupsen/logrus"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

// chartFile is the accuracy chart page, iframed by the main report.
const chartFile = "accuracy_chart.html"

// WriteAccuracyChart renders a bar chart of per-classifier accuracy.
// Classifiers without an accuracy value (no pathology data) are charted as
// zero-height bars so they stay visible on the axis.
func (w *Writer) WriteAccuracyChart(results []domain.ClassifierResult) (string, error) {
	names := make([]string, 0, len(results))
	values := make([]opts.BarData, 0, len(results))
	for _, r := range results {
		names = append(names, r.Classifier)
		pct := 0.0
		if r.Evaluated > 0 {
			pct = float64(r.Matched) / float64(r.Evaluated) * 100
		}
		values = append(values, opts.BarData{Value: pct})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "MB classifier accuracy", Width: "700px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Classifier accuracy vs pathology subtype",
			Subtitle: "Samples without pathology data are excluded from the denominator",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "accuracy (%)"}),
	)
	bar.SetXAxis(names)
	bar.AddSeries("accuracy", values)

	path := filepath.Join(w.outputDir, chartFile)
	f, err := os.Create(path)
	if err != nil {
		return "", domain.NewPipelineError(domain.ErrReportWrite, fmt.Sprintf("cannot create chart file: %v", err), path)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return "", domain.NewPipelineError(domain.ErrReportWrite, fmt.Sprintf("failed to render chart: %v", err), path)
	}

	w.logger.WithFields(logrus.Fields{
		"path":        path,
		"classifiers": len(results),
	}).Info("Wrote accuracy chart")
	return path, nil
}
