package inference

import (
	"sync"
	"time"
)

// CooldownLimiter enforces a pause after every batch of requests.
// The provider's quota is account-wide, so one limiter is shared by every
// job in the process. Requests that arrive while a cooldown is pending are
// held until it ends and count towards the next batch.
type CooldownLimiter struct {
	mu sync.Mutex

	batchSize    int           // Requests per batch (default: 3)
	cooldown     time.Duration // Minimum window between batches (default: 10s)
	count        int           // Requests counted in the current batch
	lastCooldown time.Time     // End of the last cooldown window
	blockedUntil time.Time     // No request is released before this

	now func() time.Time
}

// NewCooldownLimiter creates a limiter; the first window starts now
func NewCooldownLimiter(batchSize int, cooldown time.Duration) *CooldownLimiter {
	if batchSize <= 0 {
		batchSize = 3
	}
	return &CooldownLimiter{
		batchSize:    batchSize,
		cooldown:     cooldown,
		lastCooldown: time.Now(),
		now:          time.Now,
	}
}

// Reserve counts one request and returns how long the caller must sleep
// before sending it. Release times are handed out under the lock, so at
// most batchSize requests are released per cooldown window no matter how
// many goroutines share the limiter.
func (l *CooldownLimiter) Reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	release := now
	if l.blockedUntil.After(release) {
		release = l.blockedUntil
	}

	l.count++
	if l.count < l.batchSize {
		return release.Sub(now)
	}

	// last request of the batch: it is released once the cooldown since
	// the previous window has passed, and everything after it waits too
	l.count = 0
	if end := l.lastCooldown.Add(l.cooldown); end.After(release) {
		release = end
	}
	l.lastCooldown = release
	l.blockedUntil = release
	return release.Sub(now)
}
