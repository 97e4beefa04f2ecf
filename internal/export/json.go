package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/san-kum/physlab/internal/experiment"
)

// Report is the JSON form of a finished experiment.
type Report struct {
	ID         string       `json:"id,omitempty"`
	Lab        string       `json:"lab"`
	Integrator string       `json:"integrator,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	XLabel     string       `json:"x_label"`
	YLabel     string       `json:"y_label"`
	Samples    [][2]float64 `json:"samples"`
	Slope      float64      `json:"slope"`
	Intercept  float64      `json:"intercept"`
	RSquared   float64      `json:"r_squared"`
	Quantity   string       `json:"quantity"`
	Unit       string       `json:"unit"`
	Value      float64      `json:"value"`
	Reference  float64      `json:"reference"`
	Trials     []TrialRow   `json:"trials,omitempty"`
}

// TrialRow is one swept run as recorded, before it became a sample.
type TrialRow struct {
	Param        float64 `json:"param"`
	Measured     float64 `json:"measured"`
	Displacement float64 `json:"displacement,omitempty"`
	AtStop       float64 `json:"at_stop,omitempty"`
}

func NewReport(res *experiment.Result, integrator string) Report {
	rep := Report{
		Lab:        res.Lab,
		Integrator: integrator,
		Timestamp:  time.Now(),
		XLabel:     res.Samples.XLabel,
		YLabel:     res.Samples.YLabel,
		Slope:      res.Fit.Slope,
		Intercept:  res.Fit.Intercept,
		RSquared:   res.Fit.RSquared,
		Quantity:   res.Quantity,
		Unit:       res.Unit,
		Value:      res.Value,
		Reference:  res.Reference,
	}
	for _, s := range res.Samples.Samples() {
		rep.Samples = append(rep.Samples, [2]float64{s.X, s.Y})
	}
	for _, tr := range res.Trials {
		rep.Trials = append(rep.Trials, TrialRow{
			Param:        tr.Param,
			Measured:     tr.Measured,
			Displacement: tr.Displacement,
			AtStop:       tr.AtStop,
		})
	}
	return rep
}

func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
