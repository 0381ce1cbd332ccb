package http

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWSMessageQuery_Day(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *time.Weekday
		wantErr bool
	}{
		{"no day", `{"action":"plan","start":"Lawas","end":"Pallocan"}`, nil, false},
		{"sunday", `{"action":"plan","day":0}`, weekdayPtr(time.Sunday), false},
		{"saturday", `{"action":"plan","day":6}`, weekdayPtr(time.Saturday), false},
		{"above range", `{"action":"plan","day":9}`, nil, true},
		{"negative", `{"action":"plan","day":-1}`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m wsMessage
			if err := json.Unmarshal([]byte(tt.raw), &m); err != nil {
				t.Fatal(err)
			}
			q, err := m.query()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got weekday %v", q.Weekday)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.want == nil && q.Weekday != nil:
				t.Errorf("expected no weekday, got %v", *q.Weekday)
			case tt.want != nil && (q.Weekday == nil || *q.Weekday != *tt.want):
				t.Errorf("weekday = %v, want %v", q.Weekday, *tt.want)
			}
		})
	}
}

func weekdayPtr(d time.Weekday) *time.Weekday { return &d }
