// Package gui is the desktop front end: a raylib window that runs one lab
// at a time through the frame driver, draws it with raylib primitives and
// optionally clicks on lab events through the audio package.
package gui
