package clock

import (
	"context"
	"regexp"
	"testing"
	"time"
	_ "time/tzdata"
)

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

func fixedClock(zone string, at time.Time) *SystemClock {
	c := NewSystemClock(zone)
	c.now = func() time.Time { return at }
	return c
}

func TestSystemClock_Now(t *testing.T) {
	at := time.Date(2024, time.January, 2, 3, 4, 5, 999, time.UTC)

	tests := []struct {
		name      string
		zone      string
		wantStamp string
		wantLabel string
	}{
		{
			name:      "utc",
			zone:      "UTC",
			wantStamp: "2024-01-02 03:04:05",
			wantLabel: "UTC",
		},
		{
			name:      "named zone ahead of utc",
			zone:      "Asia/Tokyo",
			wantStamp: "2024-01-02 12:04:05",
			wantLabel: "Asia/Tokyo (JST)",
		},
		{
			name:      "named zone behind utc crosses the date line",
			zone:      "America/Los_Angeles",
			wantStamp: "2024-01-01 19:04:05",
			wantLabel: "America/Los_Angeles (PST)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fixedClock(tt.zone, at).Now(context.Background())
			if err != nil {
				t.Fatalf("Now() error = %v", err)
			}
			if got.Timestamp() != tt.wantStamp {
				t.Errorf("Timestamp() = %q, want %q", got.Timestamp(), tt.wantStamp)
			}
			if got.ZoneLabel() != tt.wantLabel {
				t.Errorf("ZoneLabel() = %q, want %q", got.ZoneLabel(), tt.wantLabel)
			}
		})
	}
}

func TestSystemClock_HostZone(t *testing.T) {
	got, err := NewSystemClock("").Now(context.Background())
	if err != nil {
		t.Fatalf("Now() error = %v", err)
	}
	if !timestampPattern.MatchString(got.Timestamp()) {
		t.Errorf("Timestamp() = %q does not match %s", got.Timestamp(), timestampPattern)
	}
	if got.ZoneLabel() == "" {
		t.Error("expected a non-empty zone label for the host zone")
	}
	if got.Location != "Local" {
		t.Errorf("Location = %q, want Local", got.Location)
	}
}

func TestSystemClock_InvalidZone(t *testing.T) {
	_, err := NewSystemClock("Mars/Olympus_Mons").Now(context.Background())
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestSystemClock_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSystemClock("").Now(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestSystemClock_RepeatedCalls(t *testing.T) {
	c := NewSystemClock("UTC")
	for i := 0; i < 5; i++ {
		if _, err := c.Now(context.Background()); err != nil {
			t.Fatalf("call %d: Now() error = %v", i, err)
		}
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "UTC+00:00"},
		{3600, "UTC+01:00"},
		{-19800, "UTC-05:30"},
		{20700, "UTC+05:45"},
	}
	for _, tt := range tests {
		if got := formatOffset(tt.seconds); got != tt.want {
			t.Errorf("formatOffset(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
