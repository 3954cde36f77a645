// Package viz renders a running simulation in the terminal.
//
// The live view is a Bubble Tea program drawing particles, ghosts and their
// connections on a braille [Canvas] with per-cell lipgloss colours, next to a
// status panel with an asciigraph plot of the kinetic energy. [Picker] puts a
// preset menu in front of it.
//
// # Key Bindings
//
//	Space - Stop/Start
//	B     - Boom: one ghost per particle
//	T     - Toggle the periodic beat
//	C     - Toggle connection lines
//	G     - Toggle the background field
//	P     - Cycle themes
//	?     - Show help overlay
package viz
