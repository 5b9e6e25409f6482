package mocksim

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"extwing/pkg/sim"
)

const (
	// Profile stages
	StageParked   = "PARKED"
	StageTaxiing  = "TAXIING"
	StageRoll     = "ROLL"
	StageClimb    = "CLIMB"
	StageCruise   = "CRUISE"
	StageDescent  = "DESCENT"
	StageRollout  = "ROLLOUT"
	StageTaxiBack = "TAXI_BACK"

	tickRateMs = 100

	taxiSpeed     = 8.0  // m/s
	approachSpeed = 70.0 // m/s
	rollAccel     = 3.0  // m/s²
	climbAccel    = 2.0  // m/s²
	climbRate     = 10.0 // m/s
	descentRate   = -8.0 // m/s
	brakeDecel    = 3.0  // m/s²
)

// Config holds timing and profile configuration for the mock vehicle.
type Config struct {
	DurationParked time.Duration
	DurationTaxi   time.Duration
	DurationCruise time.Duration
	CruiseSpeed    float64 // m/s
	RotateSpeed    float64 // m/s
	StartLat       float64
	StartLon       float64
	StartHeading   *float64
	// DropoutEvery replaces every n-th sample's velocity with NaN. Zero disables.
	DropoutEvery int
}

// DefaultConfig returns a profile that crosses 100 m/s in both directions
// about once every six minutes of simulated time.
func DefaultConfig() Config {
	return Config{
		DurationParked: 10 * time.Second,
		DurationTaxi:   20 * time.Second,
		DurationCruise: 60 * time.Second,
		CruiseSpeed:    220,
		RotateSpeed:    70,
	}
}

// MockClient implements sim.Client.
type MockClient struct {
	mu        sync.Mutex
	tel       sim.Telemetry
	stage     string
	stageTime time.Duration
	speed     float64
	steps     int
	travelled float64
	config    Config
	stages    *sim.StageMachine
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates a mock vehicle without starting the physics loop.
// Callers drive it with Step.
func New(cfg Config) *MockClient {
	if cfg.RotateSpeed <= 0 {
		cfg.RotateSpeed = DefaultConfig().RotateSpeed
	}
	if cfg.CruiseSpeed < cfg.RotateSpeed {
		cfg.CruiseSpeed = cfg.RotateSpeed
	}
	return &MockClient{
		config: cfg,
		stopCh: make(chan struct{}),
		stage:  StageParked,
		tel: sim.Telemetry{
			Position:   orb.Point{cfg.StartLon, cfg.StartLat},
			Heading:    getHeading(cfg.StartHeading),
			IsOnGround: true,
		},
		stages: sim.NewStageMachine(),
	}
}

// NewClient creates a new mock simulator client and starts its physics loop.
func NewClient(cfg Config) *MockClient {
	m := New(cfg)
	m.wg.Add(1)
	go m.physicsLoop()
	return m
}

// GetTelemetry returns the current state of the simulated vehicle.
func (m *MockClient) GetTelemetry(ctx context.Context) (sim.Telemetry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tel, nil
}

// GetState returns the current simulator connection/activity state.
// Mock is always active.
func (m *MockClient) GetState() sim.State {
	return sim.StateActive
}

// Stage returns the current profile stage.
func (m *MockClient) Stage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage
}

// DistanceTravelled returns the ground distance covered so far in meters.
func (m *MockClient) DistanceTravelled() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.travelled
}

// Close stops the physics loop and releases resources.
func (m *MockClient) Close() error {
	m.closeOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
	return nil
}

func (m *MockClient) physicsLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(time.Duration(tickRateMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Step(time.Duration(tickRateMs) * time.Millisecond)
		}
	}
}

// Step advances the simulated vehicle by dt of simulated time.
func (m *MockClient) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	secs := dt.Seconds()
	m.tel.SimTime += dt
	m.stageTime += dt
	m.steps++

	vs := 0.0
	switch m.stage {
	case StageParked:
		m.speed = 0
		if m.stageTime >= m.config.DurationParked {
			m.advance(StageTaxiing)
		}

	case StageTaxiing:
		m.speed = taxiSpeed
		if m.stageTime >= m.config.DurationTaxi {
			m.advance(StageRoll)
		}

	case StageRoll:
		m.speed += rollAccel * secs
		if m.speed >= m.config.RotateSpeed {
			m.speed = m.config.RotateSpeed
			m.advance(StageClimb)
		}

	case StageClimb:
		vs = climbRate
		m.speed += climbAccel * secs
		if m.speed >= m.config.CruiseSpeed {
			m.speed = m.config.CruiseSpeed
			m.advance(StageCruise)
		}

	case StageCruise:
		m.speed = m.config.CruiseSpeed
		if m.stageTime >= m.config.DurationCruise {
			m.advance(StageDescent)
		}

	case StageDescent:
		vs = descentRate
		m.speed = math.Max(approachSpeed, m.speed-climbAccel*secs)
		if m.tel.AltitudeAGL+vs*secs <= 0 {
			vs = 0
			m.tel.AltitudeAGL = 0
			m.advance(StageRollout)
		}

	case StageRollout:
		m.speed -= brakeDecel * secs
		if m.speed <= taxiSpeed {
			m.speed = taxiSpeed
			m.advance(StageTaxiBack)
		}

	case StageTaxiBack:
		m.speed = taxiSpeed
		if m.stageTime >= m.config.DurationTaxi {
			m.speed = 0
			m.advance(StageParked)
		}
	}

	m.tel.AltitudeAGL = math.Max(0, m.tel.AltitudeAGL+vs*secs)
	m.tel.VerticalSpeed = vs
	m.tel.IsOnGround = m.tel.AltitudeAGL <= 0
	m.tel.EngineOn = m.stage != StageParked

	dist := m.speed * secs
	if dist > 0 {
		next := geo.PointAtBearingAndDistance(m.tel.Position, m.tel.Heading, dist)
		m.travelled += geo.Distance(m.tel.Position, next)
		m.tel.Position = next
	}

	m.tel.SurfaceVelocity = sim.VelocityFrom(m.speed, m.tel.Heading, vs)
	if m.config.DropoutEvery > 0 && m.steps%m.config.DropoutEvery == 0 {
		m.tel.SurfaceVelocity[0] = math.NaN()
	}

	m.tel.FlightStage = m.stages.Update(&m.tel)
}

func (m *MockClient) advance(stage string) {
	m.stage = stage
	m.stageTime = 0
}

func getHeading(h *float64) float64 {
	if h == nil {
		return rand.Float64() * 360.0
	}
	return *h
}
