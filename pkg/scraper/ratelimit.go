package scraper

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiters holds one limiter per host for the lifetime of the process,
// so every Scraper shares the same politeness budget towards a site.
var hostLimiters = struct {
	sync.Mutex
	byHost map[string]*rate.Limiter
}{byHost: make(map[string]*rate.Limiter)}

// waitForHost blocks until a request to host is allowed. Requests to the
// same host are spaced at least interval apart; a non-positive interval
// disables limiting.
func waitForHost(ctx context.Context, host string, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	host = strings.ToLower(host)

	hostLimiters.Lock()
	lim, ok := hostLimiters.byHost[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(interval), 1)
		hostLimiters.byHost[host] = lim
	}
	hostLimiters.Unlock()

	return lim.Wait(ctx)
}

// ResetRateLimits forgets all per-host limiter state.
func ResetRateLimits() {
	hostLimiters.Lock()
	clear(hostLimiters.byHost)
	hostLimiters.Unlock()
}
