package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

const (
	outcomeOK       = "ok"
	outcomeReported = "reported_error"
	outcomeFailed   = "failed"
)

var (
	toolCallsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeserver_tool_calls_total",
		Help: "The total number of tool calls by tool and outcome",
	}, []string{"tool", "outcome"})
	toolCallDurationMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timeserver_tool_call_duration_seconds",
		Help:    "Duration of tool calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"tool"})
)

// textToolFunc returns the text for the host, whether that text reports a
// failure, and an error for failures that must abort the call.
type textToolFunc func(ctx context.Context, request mcp.CallToolRequest) (text string, reported bool, err error)

// wrap adapts fn to the server handler signature, with logging and metrics.
func wrap(tool string, fn textToolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		text, reported, err := fn(ctx, request)
		elapsed := time.Since(start)

		outcome := outcomeOK
		switch {
		case err != nil:
			outcome = outcomeFailed
		case reported:
			outcome = outcomeReported
		}
		toolCallsMetric.WithLabelValues(tool, outcome).Inc()
		toolCallDurationMetric.WithLabelValues(tool).Observe(elapsed.Seconds())

		log := logrus.WithFields(logrus.Fields{
			"tool":     tool,
			"call_id":  uuid.NewString(),
			"duration": elapsed,
			"outcome":  outcome,
			"is_error": outcome != outcomeOK,
		})
		switch outcome {
		case outcomeFailed:
			log.WithError(err).Error("tool call failed")
			return nil, err
		case outcomeReported:
			log.WithField("result", text).Warn("tool call reported an error")
		default:
			log.Debug("tool call completed")
		}

		return mcp.NewToolResultText(text), nil
	}
}
