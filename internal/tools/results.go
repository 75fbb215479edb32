package tools

import (
	"errors"
	"fmt"

	"github.com/ton-connect/timeserver/internal/clock"
	"github.com/ton-connect/timeserver/internal/ntp"
)

const ntpErrorPrefix = "Error getting NTP time: "

// LocalResult is the outcome of a local time call.
type LocalResult struct {
	Label string // "Current Time" or "Current Server Time"
	Time  clock.LocalTime
}

func (r LocalResult) Text() string {
	return fmt.Sprintf("%s: %s\nTimezone: %s", r.Label, r.Time.Timestamp(), r.Time.ZoneLabel())
}

// UTCResult is the outcome of a get_utc call. Exactly one of Time and Err is
// meaningful: Err != nil marks the failure variant.
type UTCResult struct {
	Server string
	Time   ntp.UTCTime
	Err    error
}

func (r UTCResult) Failed() bool {
	return r.Err != nil
}

// Text renders the result for the dispatch host. Failures are rendered as
// text too, the host never sees them as protocol errors.
func (r UTCResult) Text() string {
	if r.Failed() {
		return ntpErrorPrefix + describe(r.Err)
	}
	return fmt.Sprintf("Current UTC Time from %s: %s", r.Server, r.Time.Timestamp())
}

func describe(err error) string {
	var qe *ntp.QueryError
	if errors.As(err, &qe) {
		return qe.Description()
	}
	return err.Error()
}
