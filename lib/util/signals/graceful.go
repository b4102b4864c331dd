package signals

import (
	"sync"
	"time"
)

const defaultGracefulTimeout = 10 * time.Second

var (
	timeoutMu       sync.RWMutex
	gracefulTimeout = defaultGracefulTimeout
)

// SetGracefulTimeout bounds how long DispatchGraceful waits. Zero or negative
// restores the default of ten seconds.
func SetGracefulTimeout(timeout time.Duration) {
	timeoutMu.Lock()
	defer timeoutMu.Unlock()
	if timeout <= 0 {
		gracefulTimeout = defaultGracefulTimeout
	} else {
		gracefulTimeout = timeout
	}
}

// DispatchGraceful runs Dispatch(e) but gives up waiting after the graceful
// timeout. It reports whether every handler finished in time; handlers still
// running keep running in the background.
func DispatchGraceful(e Event) bool {
	timeoutMu.RLock()
	timeout := gracefulTimeout
	timeoutMu.RUnlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		Dispatch(e)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		log.WithField("event", e.String()).WithField("timeout", timeout.String()).Warn("signal_handlers_timed_out")
		return false
	}
}
