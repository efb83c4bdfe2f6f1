// Package countdown computes the time-remaining display shown next to a
// phase header.
package countdown

import (
	"fmt"
	"time"
)

type Display struct {
	Days      int    `json:"days"`
	Hours     int    `json:"hours"`
	Minutes   int    `json:"minutes"`
	Seconds   int    `json:"seconds"`
	Completed bool   `json:"completed"`
	Label     string `json:"label,omitempty"`
}

// Compute returns the time left until target. A nil or elapsed target
// yields a completed display carrying status as its label.
func Compute(target *time.Time, status string, now time.Time) Display {
	if target == nil || !now.Before(*target) {
		return Display{Completed: true, Label: status}
	}

	left := target.Sub(now)
	// Partial seconds count as a full second so the display never shows 0s early.
	secs := int64(left / time.Second)
	if left%time.Second != 0 {
		secs++
	}

	return Display{
		Days:    int(secs / 86400),
		Hours:   int(secs % 86400 / 3600),
		Minutes: int(secs % 3600 / 60),
		Seconds: int(secs % 60),
	}
}

func (d Display) String() string {
	if d.Completed {
		return d.Label
	}
	return fmt.Sprintf("%02dd %02dh %02dm %02ds", d.Days, d.Hours, d.Minutes, d.Seconds)
}
