package ntp

import (
	"time"

	"github.com/ton-connect/timeserver/internal/clock"
)

// UTCTime is the transmit timestamp of one NTP reply.
type UTCTime struct {
	Server  string
	Time    time.Time
	RTT     time.Duration
	Stratum uint8
}

// Timestamp formats the reply time in UTC.
func (u UTCTime) Timestamp() string {
	return u.Time.UTC().Format(clock.TimestampLayout)
}

// QueryError is returned for any failure of a single query: resolution,
// timeout, unreachable host or a rejected reply.
type QueryError struct {
	Server string
	Err    error
}

func (e *QueryError) Error() string {
	return "ntp query to " + e.Server + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Description is the failure reason without the server prefix.
func (e *QueryError) Description() string {
	return e.Err.Error()
}
