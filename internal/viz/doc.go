// Package viz provides the terminal front end for the molecule simulation.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one engine, stepped once per frame
//   - [Canvas]: Braille-based pixel canvas the particles are drawn on
//   - a preset picker that starts a live session from a named schedule
//
// The engine only ever sees a temperature per step. Phase buttons and the
// up/down keys move a slider target, and the temperature handed to the
// engine eases toward it on a harmonica spring.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset the ensemble
//	F     - Flash freeze (at or above boiling)
//	1/2/3 - Ice, water and steam phase buttons
//	Enter - Jump to the slider target
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
