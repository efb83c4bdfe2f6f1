package domain

import "time"

// Transition records a change of the classified phase of a launch.
type Transition struct {
	ID     string    `json:"id"`
	Launch string    `json:"launch"`
	From   Phase     `json:"from"`
	To     Phase     `json:"to"`
	At     time.Time `json:"at"`
}
