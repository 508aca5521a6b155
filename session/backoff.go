package session

import "time"

// backoff returns min(cap, base*2^attempts), the curve spec.md §4.6
// specifies for the Backoff state.
func backoff(attempts int, base, cap_ time.Duration) time.Duration {
	d := base
	for i := 0; i < attempts; i++ {
		d *= 2
		if d >= cap_ {
			return cap_
		}
	}
	if d > cap_ {
		return cap_
	}
	return d
}
