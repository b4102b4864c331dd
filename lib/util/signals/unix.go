//go:build !windows

package signals

import (
	"os"
	"os/signal"
	"syscall"
)

func notify(c chan<- os.Signal) {
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
}

func eventFor(sig os.Signal) (Event, bool) {
	switch sig {
	case syscall.SIGHUP:
		return Reload, true
	case syscall.SIGINT, syscall.SIGTERM:
		return Interrupt, true
	}
	return 0, false
}
