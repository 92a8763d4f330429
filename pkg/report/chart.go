package report

import (
	"errors"
	"fmt"

	"cltv-predict/pkg/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SavePeriodChart dessine l'histogramme réel vs simulé des transactions répétées.
// Le format (png, svg, pdf) est déduit de l'extension de path.
func SavePeriodChart(path string, counts []models.PeriodCount) error {
	if len(counts) == 0 {
		return errors.New("no period transactions to plot")
	}

	actual := make(plotter.Values, len(counts))
	simulated := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, pc := range counts {
		actual[i] = float64(pc.Actual)
		simulated[i] = float64(pc.Simulated)
		labels[i] = pc.Label
	}

	p := plot.New()
	p.Title.Text = "Frequency of Repeat Transactions"
	p.X.Label.Text = "Number of Calibration Period Transactions"
	p.Y.Label.Text = "Customers"

	w := vg.Points(14)
	barsActual, err := plotter.NewBarChart(actual, w)
	if err != nil {
		return fmt.Errorf("actual bars: %w", err)
	}
	barsActual.LineStyle.Width = vg.Length(0)
	barsActual.Color = plotutil.Color(0)
	barsActual.Offset = -w / 2

	barsModel, err := plotter.NewBarChart(simulated, w)
	if err != nil {
		return fmt.Errorf("model bars: %w", err)
	}
	barsModel.LineStyle.Width = vg.Length(0)
	barsModel.Color = plotutil.Color(1)
	barsModel.Offset = w / 2

	p.Add(barsActual, barsModel)
	p.Legend.Add("Actual", barsActual)
	p.Legend.Add("Model", barsModel)
	p.Legend.Top = true
	p.NominalX(labels...)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
