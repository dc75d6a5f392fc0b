package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"zone-less with micros", `"2025-01-01T10:00:00.123000"`, time.Date(2025, 1, 1, 10, 0, 0, 123000000, time.UTC), false},
		{"zone-less seconds", `"2025-01-01T10:00:00"`, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"rfc3339 utc", `"2025-01-01T10:00:00Z"`, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"rfc3339 offset", `"2025-01-01T15:30:00+05:30"`, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), false},
		{"null", `null`, time.Time{}, false},
		{"empty", `""`, time.Time{}, false},
		{"garbage", `"yesterday"`, time.Time{}, true},
		{"number", `1735725600`, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !ts.Equal(tt.want) {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, ts.Time, tt.want)
			}
		})
	}
}

func TestUser_DecodesBackendTimestamp(t *testing.T) {
	body := `{"id":"u1","name":"Asha","email":"asha@example.com","created_at":"2025-01-01T10:00:00.123000"}`

	var u User
	if err := json.Unmarshal([]byte(body), &u); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if u.CreatedAt.Year() != 2025 || u.CreatedAt.Location() != time.UTC {
		t.Errorf("created_at = %v", u.CreatedAt.Time)
	}

	out, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back User
	if err := json.Unmarshal(out, &back); err != nil || !back.CreatedAt.Equal(u.CreatedAt.Time) {
		t.Errorf("round trip = %v, %v", back.CreatedAt.Time, err)
	}
}
