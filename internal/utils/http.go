package utils

import (
	"net/http"
	"strings"

	"github.com/realclientip/realclientip-go"
)

// HttpRes is the JSON body of responses rejected before reaching the tool endpoint.
type HttpRes struct {
	Message    string `json:"message,omitempty" example:"too many requests"`
	StatusCode int    `json:"statusCode,omitempty" example:"200"`
}

func HttpResError(errMsg string, statusCode int) (int, HttpRes) {
	return statusCode, HttpRes{
		Message:    errMsg,
		StatusCode: statusCode,
	}
}

type RealIPExtractor struct {
	strategy realclientip.RightmostTrustedRangeStrategy
}

// NewRealIPExtractor creates a new realIPExtractor with the given trusted ranges.
func NewRealIPExtractor(trustedRanges []string) (*RealIPExtractor, error) {
	ipNets, err := realclientip.AddressesAndRangesToIPNets(trustedRanges...)
	if err != nil {
		return nil, err
	}

	strategy, err := realclientip.NewRightmostTrustedRangeStrategy("X-Forwarded-For", ipNets)
	if err != nil {
		return nil, err
	}

	return &RealIPExtractor{
		strategy: strategy,
	}, nil
}

var remoteAddrStrategy = realclientip.RemoteAddrStrategy{}

// Extract returns the rightmost untrusted address of the X-Forwarded-For chain
// extended with RemoteAddr, or RemoteAddr when there is no chain.
func (e *RealIPExtractor) Extract(request *http.Request) string {
	headers := request.Header.Clone()

	newXForwardedFor := []string{}
	oldXForwardedFor := headers.Get("X-Forwarded-For")

	if oldXForwardedFor != "" {
		newXForwardedFor = append(newXForwardedFor, oldXForwardedFor)
	}

	remoteAddr := remoteAddrStrategy.ClientIP(nil, request.RemoteAddr)
	if remoteAddr == "" || len(newXForwardedFor) == 0 {
		return remoteAddr
	}

	newXForwardedFor = append(newXForwardedFor, remoteAddr)
	headers.Set("X-Forwarded-For", strings.Join(newXForwardedFor, ", "))

	rightmostTrusted := e.strategy.ClientIP(headers, "")
	if rightmostTrusted == "" {
		return remoteAddr
	}
	return rightmostTrusted
}
