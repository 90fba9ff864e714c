package govmetrics

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Report describes the outcome of one metric run over a pair of inputs.
type Report struct {
	// Metric is the name of the metric, for example "ssim".
	Metric string
	// Reference and Distorted identify the compared inputs, usually by path.
	Reference, Distorted string
	// Frames is the number of frame pairs compared.
	Frames int
	// Video is the aggregated score over all frames.
	Video PlanarMetrics
	// PerFrame optionally holds the score of each frame in reading order.
	PerFrame []PlanarMetrics
}

// reportJSON is the on-disk layout of a Report.
type reportJSON struct {
	Reference string          `json:"reference,omitempty"`
	Distorted string          `json:"distorted,omitempty"`
	Frames    int             `json:"frames"`
	Video     PlanarMetrics   `json:"video"`
	PerFrame  []PlanarMetrics `json:"per_frame,omitempty"`
}

// ReportsToJSON converts a set of reports into indented JSON.
//
// The reports are keyed by their metric name. A report without a name is
// stored as "report-<index>". Two reports for the same metric are an error
// since one would silently replace the other.
func ReportsToJSON(reports []Report) ([]byte, error) {
	out := make(map[string]reportJSON, len(reports))

	for i, r := range reports {
		key := r.Metric
		if key == "" {
			key = fmt.Sprintf("report-%d", i)
		}
		if _, ok := out[key]; ok {
			return nil, errors.Errorf("duplicate report for metric %q", key)
		}
		out[key] = reportJSON{
			Reference: r.Reference,
			Distorted: r.Distorted,
			Frames:    r.Frames,
			Video:     r.Video,
			PerFrame:  r.PerFrame,
		}
	}

	return json.MarshalIndent(out, "", "    ")
}

// ReportsToJSONFile writes a set of reports directly to a JSON file at the
// given path.
func ReportsToJSONFile(reports []Report, filePath string) error {
	data, err := ReportsToJSON(reports)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(filePath, data, 0644), "writing report")
}
