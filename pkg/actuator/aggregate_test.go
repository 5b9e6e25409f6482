package actuator

import (
	"encoding/json"
	"testing"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name  string
		flags []bool
		want  AggregateStatus
	}{
		{"No siblings", nil, StatusNone},
		{"All retracted", []bool{false, false, false}, StatusNone},
		{"Mixed", []bool{true, false, true}, StatusPartial},
		{"All extended", []bool{true, true, true}, StatusFull},
		{"Single extended", []bool{true}, StatusFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.flags); got != tt.want {
				t.Errorf("Aggregate(%v) = %v, want %v", tt.flags, got, tt.want)
			}
		})
	}
}

func TestAggregateCounts_Totality(t *testing.T) {
	for total := 0; total <= 12; total++ {
		for extended := 0; extended <= total; extended++ {
			got := AggregateCounts(extended, total)

			var want AggregateStatus
			switch {
			case extended == 0:
				want = StatusNone
			case extended == total:
				want = StatusFull
			default:
				want = StatusPartial
			}
			if got != want {
				t.Errorf("AggregateCounts(%d, %d) = %v, want %v", extended, total, got, want)
			}
		}
	}
}

func TestAggregateStatus_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]AggregateStatus{"s": StatusPartial})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"s":"partial"}` {
		t.Errorf("got %s", data)
	}
}
