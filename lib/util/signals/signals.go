package signals

import (
	"os"
	"os/signal"
	"sync"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Event is the kind of process signal a handler reacts to.
type Event int

const (
	// Reload is raised by SIGHUP.
	Reload Event = iota
	// Interrupt is raised by SIGINT and SIGTERM.
	Interrupt
)

func (e Event) String() string {
	switch e {
	case Reload:
		return "reload"
	case Interrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// Handler is a function called when a signal is received.
type Handler func()

// HandlerID identifies a registered handler for Deregister.
type HandlerID int

type registeredHandler struct {
	id    HandlerID
	event Event
	fn    Handler
}

var (
	mu       sync.RWMutex
	handlers []registeredHandler
	nextID   HandlerID

	sigChan  = make(chan os.Signal, 1)
	stopOnce sync.Once
)

// Register adds f for event e. Nil handlers are ignored and return -1.
func Register(e Event, f Handler) HandlerID {
	if f == nil {
		return -1
	}
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	handlers = append(handlers, registeredHandler{id: id, event: e, fn: f})
	return id
}

// RegisterReloadHandler registers f for SIGHUP.
func RegisterReloadHandler(f Handler) HandlerID { return Register(Reload, f) }

// RegisterInterruptHandler registers f for SIGINT and SIGTERM.
func RegisterInterruptHandler(f Handler) HandlerID { return Register(Interrupt, f) }

// Deregister removes the handler with the given id.
func Deregister(id HandlerID) {
	mu.Lock()
	defer mu.Unlock()
	for i, h := range handlers {
		if h.id == id {
			handlers = append(handlers[:i], handlers[i+1:]...)
			return
		}
	}
}

func snapshot(e Event) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	var out []Handler
	for _, h := range handlers {
		if h.event == e {
			out = append(out, h.fn)
		}
	}
	return out
}

// Dispatch runs every handler registered for e in registration order and
// returns how many ran. A panicking handler is logged and does not stop the
// rest.
func Dispatch(e Event) int {
	run := snapshot(e)
	for _, fn := range run {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("event", e.String()).Errorf("signal_handler_panic: %v", r)
				}
			}()
			fn()
		}()
	}
	return len(run)
}

// Handle subscribes to process signals and dispatches them until StopHandle
// is called. Interrupts are dispatched with DispatchGraceful.
func Handle() {
	notify(sigChan)
	for sig := range sigChan {
		e, ok := eventFor(sig)
		if !ok {
			continue
		}
		log.WithField("signal", sig.String()).Debug("signal_received")
		if e == Interrupt {
			DispatchGraceful(e)
		} else {
			Dispatch(e)
		}
	}
}

// StopHandle makes Handle return. Safe to call more than once.
func StopHandle() {
	stopOnce.Do(func() {
		signal.Stop(sigChan)
		close(sigChan)
	})
}
