package clock

import (
	"context"
	"fmt"
	"time"
)

// TimestampLayout renders a zero-padded 24-hour timestamp without sub-second
// precision or offset.
const TimestampLayout = "2006-01-02 15:04:05"

// Provider reads the local wall clock.
// This interface allows pinning the clock in tests.
type Provider interface {
	Now(ctx context.Context) (LocalTime, error)
}

// LocalTime is a single reading of the local clock.
type LocalTime struct {
	Time     time.Time
	Zone     string // abbreviation, e.g. "CET"
	Location string // IANA name or "Local"
}

// Timestamp formats the reading with TimestampLayout.
func (l LocalTime) Timestamp() string {
	return l.Time.Format(TimestampLayout)
}

// ZoneLabel returns the zone abbreviation, prefixed by the IANA name when an
// explicit zone was configured.
func (l LocalTime) ZoneLabel() string {
	if l.Location == "" || l.Location == "Local" || l.Location == l.Zone {
		return l.Zone
	}
	return fmt.Sprintf("%s (%s)", l.Location, l.Zone)
}

// SystemClock provides time based on the host system clock.
type SystemClock struct {
	zone string
	now  func() time.Time
}

// NewSystemClock creates a clock reporting the host zone, or zone when it is
// not empty.
func NewSystemClock(zone string) *SystemClock {
	return &SystemClock{
		zone: zone,
		now:  time.Now,
	}
}

// Now returns the current local time. The zone is resolved on every call so a
// broken zone fails the call instead of falling back to UTC.
func (c *SystemClock) Now(ctx context.Context) (LocalTime, error) {
	if err := ctx.Err(); err != nil {
		return LocalTime{}, err
	}

	loc := time.Local
	if c.zone != "" {
		var err error
		loc, err = time.LoadLocation(c.zone)
		if err != nil {
			return LocalTime{}, fmt.Errorf("failed to load timezone %q: %w", c.zone, err)
		}
	}

	now := c.now().In(loc)
	name, offset := now.Zone()
	if name == "" {
		name = formatOffset(offset)
	}

	return LocalTime{
		Time:     now,
		Zone:     name,
		Location: loc.String(),
	}, nil
}

func formatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}
