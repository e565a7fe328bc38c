// Package export writes a finished run to stdout-friendly formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/cooldown/internal/batch"
	"github.com/san-kum/cooldown/internal/metrics"
	"github.com/san-kum/cooldown/internal/samplelog"
	"github.com/san-kum/cooldown/internal/thermal"
)

type Report struct {
	Inputs  thermal.Inputs     `json:"inputs"`
	Fluid   thermal.Fluid      `json:"fluid"`
	Totals  metrics.Totals     `json:"totals"`
	Metrics map[string]float64 `json:"metrics"`
	Samples []samplelog.Sample `json:"samples"`
}

func NewReport(res *batch.Result) Report {
	return Report{
		Inputs:  res.Inputs,
		Fluid:   res.Coeffs.Fluid,
		Totals:  res.Totals,
		Metrics: res.Metrics,
		Samples: res.Log.Samples(),
	}
}

func JSON(w io.Writer, res *batch.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(res))
}

// CSV writes one row per sample.
func CSV(w io.Writer, log *samplelog.Log) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"elapsed_s", "hours", "temperature_k", "temperature_c"}); err != nil {
		return err
	}
	for _, s := range log.Samples() {
		row := []string{
			strconv.FormatFloat(s.Elapsed, 'f', 0, 64),
			strconv.FormatFloat(s.Hours(), 'f', 4, 64),
			strconv.FormatFloat(s.Temperature, 'f', 3, 64),
			strconv.FormatFloat(s.Celsius(), 'f', 3, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
