package uri

import (
	"strings"
	"sync"
)

var (
	schemesMu sync.RWMutex
	schemes   = map[string]int{
		"http":  80,
		"https": 443,
	}
)

// RegisterScheme makes the scheme acceptable by URIs. The default port is omitted from
// rendering, zero means the scheme has none.
func RegisterScheme(scheme string, defaultPort int) {
	schemesMu.Lock()
	schemes[strings.ToLower(scheme)] = defaultPort
	schemesMu.Unlock()
}

// DefaultPort returns the default port of the scheme and whether the scheme is known at all.
func DefaultPort(scheme string) (port int, known bool) {
	schemesMu.RLock()
	port, known = schemes[strings.ToLower(scheme)]
	schemesMu.RUnlock()

	return port, known
}
