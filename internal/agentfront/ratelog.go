package agentfront

import (
	"log"
	"sync"
	"time"
)

// rateLimitedLogger keeps repeated failures (beacon sends, probe cleanup) from
// flooding the log. At most one line per interval; everything else is dropped.
type rateLimitedLogger struct {
	mu       sync.Mutex
	lastAt   time.Time
	dropped  int
	interval time.Duration
}

func newRateLimitedLogger(interval time.Duration) *rateLimitedLogger {
	return &rateLimitedLogger{interval: interval}
}

func (l *rateLimitedLogger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if !l.lastAt.IsZero() && now.Sub(l.lastAt) < l.interval {
		l.dropped++
		return
	}
	if l.dropped > 0 {
		format += " (%d similar suppressed)"
		args = append(args, l.dropped)
		l.dropped = 0
	}
	l.lastAt = now
	log.Printf(format, args...)
}
