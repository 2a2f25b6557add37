package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Times  []float64   `json:"times"`
	Frames [][]float64 `json:"frames"`
}

// ExportJSON writes a run with its frames as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, frames [][]float64, times []float64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Times: times, Frames: frames})
}
