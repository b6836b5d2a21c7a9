package risk

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	mortalityLabel = "Mortality Risk"
	survivalLabel  = "Survival Probability"
)

// RenderPie renders the mortality/survival breakdown as a standalone HTML page.
func RenderPie(mortalityRisk float64) (string, error) {
	if mortalityRisk < 0 || mortalityRisk > 1 {
		return "", fmt.Errorf("mortality risk %v outside [0, 1]", mortalityRisk)
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Mortality Risk Breakdown",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithColorsOpts(opts.Colors{"#FF5733", "#33FF57"}),
	)

	data := []opts.PieData{
		{Name: mortalityLabel, Value: mortalityRisk * 100},
		{Name: survivalLabel, Value: (1 - mortalityRisk) * 100},
	}

	pie.AddSeries("risk", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {d}%",
			}),
			charts.WithPieChartOpts(opts.PieChart{
				Radius: "60%",
			}),
		)

	var buf bytes.Buffer
	if err := pie.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
