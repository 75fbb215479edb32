package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/ton-connect/timeserver/internal/utils"
)

// ConnectionsLimiter limits the number of simultaneous in-flight requests per client IP.
type ConnectionsLimiter struct {
	mu          sync.Mutex
	connections map[string]int
	max         int
	realIP      *utils.RealIPExtractor
}

func NewConnectionLimiter(max int, extractor *utils.RealIPExtractor) *ConnectionsLimiter {
	return &ConnectionsLimiter{
		connections: map[string]int{},
		max:         max,
		realIP:      extractor,
	}
}

// LeaseConnection increases the number of connections of the request's client
// and returns a release function to be called once the request is finished.
// If the client is at the limit, LeaseConnection returns an error.
func (l *ConnectionsLimiter) LeaseConnection(request *http.Request) (release func(), err error) {
	key := fmt.Sprintf("ip-%v", l.realIP.Extract(request))
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connections[key] >= l.max {
		return nil, fmt.Errorf("you have reached the limit of concurrent requests: %v max", l.max)
	}
	l.connections[key] += 1

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.connections[key] -= 1
			if l.connections[key] == 0 {
				delete(l.connections, key)
			}
		})
	}, nil
}

// Active returns the number of leased connections for the request's client.
func (l *ConnectionsLimiter) Active(request *http.Request) int {
	key := fmt.Sprintf("ip-%v", l.realIP.Extract(request))
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connections[key]
}
