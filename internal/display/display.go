package display

import "image"

// Display shows captures until the user closes it.
type Display interface {
	SetFrame(img *image.RGBA)
	Run() error
}

// Actions are the viewer commands bound to keys. Nil actions are ignored.
type Actions struct {
	// Refresh requests a new capture (R).
	Refresh func()
	// Save writes the current capture to disk (S).
	Save func()
}
