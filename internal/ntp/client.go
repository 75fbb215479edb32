package ntp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beevik/ntp"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServer  = "pool.ntp.org"
	DefaultVersion = 3
)

var errDeadlineExceeded = errors.New("deadline exceeded before the request was sent")

type queryFunc func(host string, opt ntp.QueryOptions) (*ntp.Response, error)

// Client issues single, unretried NTP queries.
type Client struct {
	defaultServer string
	version       int
	healthTimeout time.Duration
	query         queryFunc
}

type Options struct {
	DefaultServer string
	Version       int
	HealthTimeout time.Duration
}

func NewClient(opts Options) *Client {
	if opts.DefaultServer == "" {
		opts.DefaultServer = DefaultServer
	}

	if opts.Version == 0 {
		opts.Version = DefaultVersion
	}

	if opts.HealthTimeout == 0 {
		opts.HealthTimeout = 5 * time.Second
	}

	return &Client{
		defaultServer: opts.DefaultServer,
		version:       opts.Version,
		healthTimeout: opts.HealthTimeout,
		query:         ntp.QueryWithOptions,
	}
}

// DefaultServer returns the server queried when the caller names none.
func (c *Client) DefaultServer() string {
	return c.defaultServer
}

// Query sends one request to server (or the default server when empty) and
// returns the transmit timestamp of the reply. Failures are *QueryError.
//
// Any reply the library could parse is accepted except kiss-of-death, so an
// unsynchronised server still yields its clock reading. The request timeout
// is the library default unless ctx carries an earlier deadline.
func (c *Client) Query(ctx context.Context, server string) (UTCTime, error) {
	if server == "" {
		server = c.defaultServer
	}

	response, err := c.exchange(ctx, server)
	if err != nil {
		return UTCTime{}, err
	}
	if response.Stratum == 0 {
		return UTCTime{}, invalidResponse(server, ntp.ErrKissOfDeath)
	}

	queriesMetric.WithLabelValues(resultOK).Inc()
	logrus.WithFields(logrus.Fields{
		"server":  server,
		"offset":  response.ClockOffset,
		"rtt":     response.RTT,
		"stratum": response.Stratum,
		"leap":    response.Leap,
	}).Debug("NTP query succeeded")

	return UTCTime{
		Server:  server,
		Time:    response.Time.UTC(),
		RTT:     response.RTT,
		Stratum: response.Stratum,
	}, nil
}

// HealthCheck reports whether the default server answers with a reply fit
// for synchronisation. The check is bounded by the health timeout and by ctx.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	response, err := c.exchange(ctx, c.defaultServer)
	if err != nil {
		return err
	}
	if err := response.Validate(); err != nil {
		return invalidResponse(c.defaultServer, err)
	}

	queriesMetric.WithLabelValues(resultOK).Inc()
	return nil
}

func (c *Client) exchange(ctx context.Context, server string) (*ntp.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &QueryError{Server: server, Err: err}
	}

	options := ntp.QueryOptions{
		Version: c.version,
	}
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &QueryError{Server: server, Err: errDeadlineExceeded}
		}
		options.Timeout = remaining
	}

	start := time.Now()
	response, err := c.query(server, options)
	queryDurationMetric.Observe(time.Since(start).Seconds())
	if err != nil {
		queriesMetric.WithLabelValues(resultError).Inc()
		logrus.WithFields(logrus.Fields{
			"server": server,
			"error":  err,
		}).Warn("Failed to query NTP server")
		return nil, &QueryError{Server: server, Err: err}
	}
	return response, nil
}

func invalidResponse(server string, err error) error {
	queriesMetric.WithLabelValues(resultInvalid).Inc()
	logrus.WithFields(logrus.Fields{
		"server": server,
		"error":  err,
	}).Warn("Invalid response from NTP server")
	return &QueryError{Server: server, Err: fmt.Errorf("invalid response: %w", err)}
}
