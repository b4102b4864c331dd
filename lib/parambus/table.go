package parambus

import (
	"fmt"
	"sync"

	"github.com/go-i2p/logger"
	"github.com/qdu-future/paramtune/lib/params"
)

// Table is an in-memory module holding named numeric parameters. It accepts
// `<tag> <name> <value>` to set a parameter and `<tag> show` to log them all.
type Table struct {
	name string

	mu     sync.RWMutex
	order  []string
	values map[string]params.Value
}

// NewTable returns an empty table logging under name.
func NewTable(name string) *Table {
	return &Table{name: name, values: make(map[string]params.Value)}
}

// TableFromGroup builds a table from a parameter subtree, one entry per
// leaf keyed by its resolved command name. When two leaves share a command
// name the later one wins.
func TableFromGroup(name string, g *params.Group) *Table {
	t := NewTable(name)
	t.Reset(g)
	return t
}

// Reset replaces the table's parameters with the leaves of g.
func (t *Table) Reset(g *params.Group) {
	descs, _ := params.Descriptors(g)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.order = t.order[:0]
	t.values = make(map[string]params.Value, len(descs))
	for _, d := range descs {
		cmd := params.ResolveCommandName(d.Path)
		if _, dup := t.values[cmd]; !dup {
			t.order = append(t.order, cmd)
		}
		t.values[cmd] = d.Value
	}
}

// Define adds or replaces a parameter.
func (t *Table) Define(name string, v params.Value) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.values[name]; !ok {
		t.order = append(t.order, name)
	}
	t.values[name] = v
}

// Get returns the current value of a parameter.
func (t *Table) Get(name string) (params.Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[name]
	return v, ok
}

// Names returns parameter names in definition order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

// EvalCommand implements Module.
func (t *Table) EvalCommand(argv []string) error {
	if len(argv) < 2 {
		return ErrMissingCommand
	}
	cmd := argv[1]
	if cmd == "show" {
		t.show()
		return nil
	}
	if len(argv) < 3 {
		return fmt.Errorf("%w: %s", ErrMissingArgument, cmd)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.values[cmd]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, cmd)
	}
	v, err := params.ParseValue(cur.Type(), argv[2])
	if err != nil {
		return err
	}
	t.values[cmd] = v
	log.WithFields(logger.Fields{
		"at":     "parambus.Table.EvalCommand",
		"module": t.name,
		"param":  cmd,
		"value":  v.String(),
	}).Info("parameter_updated")
	return nil
}

func (t *Table) show() {
	log.WithFields(t.showFields()).Info("parameters")
}

// showFields nests the parameters under one key so a parameter named like a
// log field cannot replace it.
func (t *Table) showFields() logger.Fields {
	t.mu.RLock()
	defer t.mu.RUnlock()
	values := make(map[string]string, len(t.order))
	for _, name := range t.order {
		values[name] = t.values[name].String()
	}
	return logger.Fields{"at": "parambus.Table.show", "module": t.name, "params": values}
}
