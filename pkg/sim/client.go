package sim

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
)

var (
	// ErrNotConnected is returned when a client action requires a connection.
	ErrNotConnected = errors.New("simulator not connected")
)

// Client defines the interface for simulator interaction.
type Client interface {
	// GetTelemetry returns the current state of the vehicle.
	GetTelemetry(ctx context.Context) (Telemetry, error)
	// GetState returns the current simulator connection/activity state.
	GetState() State
	// Close cleans up resources associated with the client.
	Close() error
}

// Telemetry represents a snapshot of vehicle state.
type Telemetry struct {
	SimTime         time.Duration // Simulated time since start
	Position        orb.Point     // Lon, Lat
	AltitudeAGL     float64       // Meters
	Heading         float64       // Degrees True
	VerticalSpeed   float64       // m/s
	SurfaceVelocity mgl64.Vec3    // m/s, east/north/up relative to the surface

	IsOnGround  bool
	EngineOn    bool
	FlightStage string
}

// SurfaceSpeed returns the magnitude of the surface velocity in m/s.
// NaN means the vehicle has no valid velocity this sample.
func (t *Telemetry) SurfaceSpeed() float64 {
	for _, c := range t.SurfaceVelocity {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return math.NaN()
		}
	}
	return t.SurfaceVelocity.Len()
}

// GroundSpeed returns the horizontal component of the surface velocity in m/s.
func (t *Telemetry) GroundSpeed() float64 {
	return t.SurfaceVelocity.Vec2().Len()
}

// VelocityFrom builds an east/north/up vector from a horizontal speed along a
// heading plus a vertical rate.
func VelocityFrom(speed, headingDeg, vertical float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(headingDeg)
	return mgl64.Vec3{speed * math.Sin(rad), speed * math.Cos(rad), vertical}
}
