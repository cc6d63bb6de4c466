package services

import (
	"context"
	"sync"
	"time"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
}

// LocationSource is a single-shot resolver: the host-app bridge when the
// client runs embedded in the native wrapper, or browser geolocation.
type LocationSource interface {
	Resolve(ctx context.Context) (*Location, error)
}

// BridgeTimeout bounds how long we wait for the host app before falling
// back to the browser API.
const BridgeTimeout = 3 * time.Second

// ResolveLocation tries the bridge first, then the fallback. First
// result wins: a stale bridge callback that fires after the fallback
// path has started must not override it, which the consumed flag
// guarantees. Both sources failing is fine — an absent location is a
// valid outcome, not an error.
func ResolveLocation(ctx context.Context, bridge, fallback LocationSource, bridgeTimeout time.Duration) *Location {
	var mu sync.Mutex
	var resolved *Location
	consumed := false

	take := func(l *Location) bool {
		mu.Lock()
		defer mu.Unlock()
		if consumed || l == nil {
			return false
		}
		consumed = true
		resolved = l
		return true
	}

	if bridge != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			if l, err := bridge.Resolve(ctx); err == nil {
				take(l)
			}
		}()
		select {
		case <-done:
		case <-time.After(bridgeTimeout):
		case <-ctx.Done():
			return nil
		}
	}

	mu.Lock()
	got := consumed
	mu.Unlock()
	if !got && fallback != nil {
		if l, err := fallback.Resolve(ctx); err == nil {
			take(l)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	return resolved
}
