package config

// Persistent state keys (Registry)
const (
	KeySimSource     = "sim_source"
	KeyTelemetryLoop = "telemetry_loop"
	KeyMockLat       = "mock_start_lat"
	KeyMockLon       = "mock_start_lon"
	KeyMockHeading   = "mock_start_heading"
	KeyMockDurParked = "mock_duration_parked"
	KeyMockDurTaxi   = "mock_duration_taxi"
	KeyMockDurCruise = "mock_duration_cruise"
)

// Per-actuator host fields, stored under "actuator.<name>.<field>".
const (
	FieldExtended    = "extended"
	FieldAutoExtend  = "auto_extend"
	FieldExtendSpeed = "extend_speed"
)

// ActuatorKey returns the state key of a persisted actuator field.
func ActuatorKey(name, field string) string {
	return "actuator." + name + "." + field
}
