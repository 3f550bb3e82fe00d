package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/rebound/internal/sim"
)

type ExportData struct {
	Scene      string             `json:"scene"`
	Integrator string             `json:"integrator"`
	Tick       float64            `json:"tick_ms"`
	Duration   float64            `json:"duration_ms"`
	Steps      int                `json:"steps"`
	Rebounds   int                `json:"rebounds"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
}

// ExportJSON writes a full run, trajectory included, as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	data := ExportData{
		Scene:      meta.Scene,
		Integrator: meta.Integrator,
		Tick:       meta.Tick,
		Duration:   meta.Duration,
		Steps:      len(result.Times),
		Rebounds:   result.Rebounds,
		Times:      result.Times,
		States:     result.States,
		Metrics:    result.Metrics,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
