// Package viz renders mass-spring scenes in the terminal.
//
//   - [Canvas]: Braille pixel grid, 2x4 pixels per cell
//   - [Camera]: rotatable weak-perspective projection of a scene
//   - [Model]: bubbletea live view driving a [sim.Simulator]
//   - [Menu]: scenario picker in front of the live view
//
// # Key Bindings
//
//	Space - Pause/Resume (one step in single-step scenarios)
//	N     - Advance one step
//	R     - Rebuild the scene
//	I     - Cycle integrator
//	g/G   - Gravity up/down
//	w/W   - Wind up/down
//	k/K   - Stiffness up/down
//	S     - Next scenario
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
