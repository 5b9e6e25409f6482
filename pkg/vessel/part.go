package vessel

import (
	"sync"

	"extwing/pkg/actuator"
)

// LiftSurface receives the effective lift coefficient of a part every tick.
type LiftSurface interface {
	SetLiftCoefficient(v float64)
}

// Indicator is the status light of a part.
type Indicator interface {
	Set(on bool, c Color)
}

// Color is an RGBA light color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

var (
	ColorClear = Color{}
	ColorGreen = Color{R: 0, G: 1, B: 0.23, A: 1}
	ColorRed   = Color{R: 1, G: 0, B: 0.06, A: 1}
)

// IndicatorFor maps the vessel-wide status to the light state: off when no
// part is extended, green when some are, red when all are.
func IndicatorFor(s actuator.AggregateStatus) (on bool, c Color) {
	switch s {
	case actuator.StatusPartial:
		return true, ColorGreen
	case actuator.StatusFull:
		return true, ColorRed
	}
	return false, ColorClear
}

// Part is one extendable surface on the vessel.
type Part struct {
	Name       string
	Controller *actuator.Controller
	Surface    LiftSurface
	Indicator  Indicator
}

// MemorySurface records the last lift coefficient written to it.
type MemorySurface struct {
	mu    sync.Mutex
	value float64
}

func (s *MemorySurface) SetLiftCoefficient(v float64) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
}

func (s *MemorySurface) Value() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// MemoryIndicator records the last light state written to it.
type MemoryIndicator struct {
	mu    sync.Mutex
	on    bool
	color Color
}

func (i *MemoryIndicator) Set(on bool, c Color) {
	i.mu.Lock()
	i.on, i.color = on, c
	i.mu.Unlock()
}

func (i *MemoryIndicator) State() (on bool, c Color) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.on, i.color
}
