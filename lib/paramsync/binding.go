package paramsync

import (
	"sync"

	"github.com/qdu-future/paramtune/lib/params"
)

// Sender carries commands to a remote module. *channel.Channel implements it.
type Sender interface {
	SendCommand(moduleTag, command string, args ...any) error
}

// Binding is a registered leaf.
type Binding struct {
	Tag        string
	Command    string
	Descriptor params.Descriptor

	subtree *params.Group
	sender  Sender

	mu   sync.Mutex
	text string
}

// Path returns the leaf's path within its module subtree.
func (b *Binding) Path() params.Path { return b.Descriptor.Path }

// Type returns the leaf's fixed type.
func (b *Binding) Type() params.LeafType { return b.Descriptor.Type }

// Text returns the text currently shown for the leaf.
func (b *Binding) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *Binding) setText(s string) {
	b.mu.Lock()
	b.text = s
	b.mu.Unlock()
}

// Connected reports whether the binding has somewhere to send commands.
func (b *Binding) Connected() bool { return b.sender != nil }

func bindingKey(tag string, path params.Path) string {
	return tag + "\x00" + path.String()
}
