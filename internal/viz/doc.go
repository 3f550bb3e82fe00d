// Package viz runs a world interactively in the terminal using Bubble Tea.
//
// The view is numeric only: a per-body telemetry table, a height history
// graph for the first body and a vertical speed sparkline.
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	Arrow keys - Point gravity up, down, left or right
//	R          - Reload the scenario
//	Q          - Quit
package viz
