package football

import (
	"testing"
	"time"
)

func TestKickoff(t *testing.T) {
	want := time.Date(2023, 8, 11, 19, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		info     FixtureInfo
		expected time.Time
	}{
		{"offset", FixtureInfo{Date: "2023-08-11T19:00:00+00:00"}, want},
		{"zulu", FixtureInfo{Date: "2023-08-11T19:00:00Z"}, want},
		{"offset without colon", FixtureInfo{Date: "2023-08-11T21:00:00+0200"}, want},
		{"no zone", FixtureInfo{Date: "2023-08-11T19:00:00"}, want},
		{"space separated", FixtureInfo{Date: "2023-08-11 19:00:00"}, want},
		{"timestamp fallback", FixtureInfo{Date: "11/08/2023", Timestamp: want.Unix()}, want},
		{"unusable", FixtureInfo{Date: "tomorrow"}, time.Time{}},
	}

	for _, tt := range tests {
		if got := tt.info.Kickoff(); !got.Equal(tt.expected) {
			t.Errorf("%s: Kickoff() = %v, want %v", tt.name, got, tt.expected)
		}
	}
}
