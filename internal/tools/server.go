package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ton-connect/timeserver/internal/clock"
	"github.com/ton-connect/timeserver/internal/ntp"
)

const (
	GetTimeToolName       = "get_time"
	GetServerTimeToolName = "get_server_time"
	GetUTCToolName        = "get_utc"

	serverParam = "server"
)

// NTPQuerier queries a single NTP server.
type NTPQuerier interface {
	Query(ctx context.Context, server string) (ntp.UTCTime, error)
}

type Options struct {
	Name    string
	Version string
	// LocalToolName is GetTimeToolName or GetServerTimeToolName. Both read the
	// same clock and differ only in the label of the first line.
	LocalToolName    string
	DefaultNTPServer string
	Clock            clock.Provider
	NTP              NTPQuerier
}

type localToolVariant struct {
	label       string
	title       string
	description string
	// utcDescription describes get_utc next to this local tool.
	utcDescription string
}

var localToolVariants = map[string]localToolVariant{
	GetTimeToolName: {
		label: "Current Time",
		title: "Get Local Time and Timezone",
		description: "Returns the current local time and timezone information from the local clock of this server. " +
			"As an AI you can thus know what time it is here.",
		utcDescription: "Returns accurate UTC time from an NTP server. " +
			"As an AI you can thus know what time it is now exactly in UTC.",
	},
	GetServerTimeToolName: {
		label: "Current Server Time",
		title: "Get Local Time and Timezone for the Server Hosting this Tool",
		description: "Returns the current local time and timezone from the server hosting this tool. " +
			"Note: This is the server's time, which may be different from the user's local time.",
		utcDescription: "Returns accurate UTC time from an NTP server. " +
			"This provides a universal time reference regardless of local timezone.",
	},
}

// NewServer builds the tool server with the local time tool and get_utc.
func NewServer(opts Options) (*server.MCPServer, error) {
	if opts.LocalToolName == "" {
		opts.LocalToolName = GetTimeToolName
	}
	variant, ok := localToolVariants[opts.LocalToolName]
	if !ok {
		return nil, fmt.Errorf("unknown local time tool %q", opts.LocalToolName)
	}
	if opts.DefaultNTPServer == "" {
		opts.DefaultNTPServer = ntp.DefaultServer
	}
	if opts.Clock == nil || opts.NTP == nil {
		return nil, fmt.Errorf("clock and ntp providers are required")
	}

	s := server.NewMCPServer(
		opts.Name,
		opts.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	h := &handler{
		clock:         opts.Clock,
		ntp:           opts.NTP,
		localLabel:    variant.label,
		defaultServer: opts.DefaultNTPServer,
	}

	s.AddTool(localTimeTool(opts.LocalToolName, variant), wrap(opts.LocalToolName, h.localTime))
	s.AddTool(utcTool(variant.utcDescription, opts.DefaultNTPServer), wrap(GetUTCToolName, h.utc))

	return s, nil
}

func localTimeTool(name string, variant localToolVariant) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(variant.description),
		mcp.WithTitleAnnotation(variant.title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func utcTool(description, defaultServer string) mcp.Tool {
	return mcp.NewTool(GetUTCToolName,
		mcp.WithDescription(description),
		mcp.WithTitleAnnotation("Get UTC Time from an NTP Server"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
		mcp.WithString(serverParam,
			mcp.Description(fmt.Sprintf("NTP server address (default: %s)", defaultServer)),
			mcp.DefaultString(defaultServer),
		),
	)
}

type handler struct {
	clock         clock.Provider
	ntp           NTPQuerier
	localLabel    string
	defaultServer string
}

func (h *handler) localTime(ctx context.Context, _ mcp.CallToolRequest) (string, bool, error) {
	now, err := h.clock.Now(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to read local clock: %w", err)
	}
	return LocalResult{Label: h.localLabel, Time: now}.Text(), false, nil
}

func (h *handler) utc(ctx context.Context, request mcp.CallToolRequest) (string, bool, error) {
	server := strings.TrimSpace(request.GetString(serverParam, ""))
	if server == "" {
		server = h.defaultServer
	}
	result := QueryUTC(ctx, h.ntp, server)
	return result.Text(), result.Failed(), nil
}

// QueryUTC performs one query and folds the outcome into a UTCResult.
func QueryUTC(ctx context.Context, q NTPQuerier, server string) UTCResult {
	t, err := q.Query(ctx, server)
	if err != nil {
		return UTCResult{Server: server, Err: err}
	}
	return UTCResult{Server: server, Time: t}
}
