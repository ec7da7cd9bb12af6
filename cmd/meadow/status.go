package main

import (
	"fmt"
	"time"

	"meadow/scene"
)

// status accumulates per-second frame statistics for the window title.
type status struct {
	frames   int
	inserted int
	evicted  int
	last     time.Time
}

func (s *status) add(f scene.Frame) {
	s.frames++
	s.inserted += len(f.Plants.Inserted)
	s.evicted += len(f.Plants.Evicted)
}

// title returns a new title once per second, or "" in between.
func (s *status) title(now time.Time, m *scene.Meadow) string {
	if s.last.IsZero() {
		s.last = now
	}
	elapsed := now.Sub(s.last)
	if elapsed < time.Second {
		return ""
	}
	fps := float64(s.frames) / elapsed.Seconds()
	t := fmt.Sprintf("meadow | FPS: %.0f | %s | plants %d (+%d -%d, %d pending) | (%.1f, %.1f, %.1f)",
		fps, m.Controllers.Active(), m.Plants.Len(), s.inserted, s.evicted, m.Plants.Pending(),
		m.Camera.Position.X, m.Camera.Position.Y, m.Camera.Position.Z)
	*s = status{last: now}
	return t
}
