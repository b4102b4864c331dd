//go:build windows

package signals

import (
	"os"
	"os/signal"
)

func notify(c chan<- os.Signal) {
	signal.Notify(c, os.Interrupt)
}

func eventFor(sig os.Signal) (Event, bool) {
	if sig == os.Interrupt {
		return Interrupt, true
	}
	return 0, false
}
