package actuator

import "fmt"

// AggregateStatus summarises the extension state of every actuator on a vessel.
type AggregateStatus int

const (
	StatusNone AggregateStatus = iota
	StatusPartial
	StatusFull
)

func (s AggregateStatus) String() string {
	switch s {
	case StatusPartial:
		return "partial"
	case StatusFull:
		return "full"
	}
	return "none"
}

// MarshalText lets the status travel as a string in JSON.
func (s AggregateStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *AggregateStatus) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none":
		*s = StatusNone
	case "partial":
		*s = StatusPartial
	case "full":
		*s = StatusFull
	default:
		return fmt.Errorf("unknown aggregate status %q", b)
	}
	return nil
}

// Aggregate reduces sibling extended flags to a vessel-wide status.
func Aggregate(flags []bool) AggregateStatus {
	extended := 0
	for _, f := range flags {
		if f {
			extended++
		}
	}
	return AggregateCounts(extended, len(flags))
}

// AggregateCounts is Aggregate expressed on counts.
func AggregateCounts(extended, total int) AggregateStatus {
	switch {
	case total <= 0, extended <= 0:
		return StatusNone
	case extended >= total:
		return StatusFull
	}
	return StatusPartial
}
