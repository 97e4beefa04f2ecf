// Package viz is the terminal front end for the labs.
//
// A [Menu] picks a lab and hands over to a [Model], which advances the lab
// through a [dynamo.Driver] on every tick and draws it on a Braille [Canvas].
//
// # Key Bindings
//
//	Space - Release / launch / next phase
//	R     - Reset the lab
//	Tab   - Cycle parameters
//	↑/↓   - Adjust the selected parameter
//	?     - Show help overlay
//	Q     - Quit (Esc returns to the menu)
package viz
