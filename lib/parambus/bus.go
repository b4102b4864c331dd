package parambus

import (
	"fmt"
	"strings"
	"sync"
)

// Module evaluates the tokens of one command line.
type Module interface {
	EvalCommand(argv []string) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(argv []string) error

func (f ModuleFunc) EvalCommand(argv []string) error { return f(argv) }

// Bus dispatches command lines to modules by name.
type Bus struct {
	mu      sync.RWMutex
	modules map[string]Module
}

func NewBus() *Bus {
	return &Bus{modules: make(map[string]Module)}
}

// Register adds m under name, replacing any module already there. Empty
// names and nil modules are ignored.
func (b *Bus) Register(name string, m Module) {
	if name == "" || m == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modules[name] = m
}

// Module returns the module registered under name.
func (b *Bus) Module(name string) (Module, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.modules[name]
	return m, ok
}

// EvalLine tokenizes line and runs it on the module named by its first token.
func (b *Bus) EvalLine(line string) error {
	argv := strings.Fields(line)
	if len(argv) == 0 {
		return ErrEmptyLine
	}
	m, ok := b.Module(argv[0])
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, argv[0])
	}
	return m.EvalCommand(argv)
}
