package paramsync

import (
	"errors"
	"sync"

	"github.com/go-i2p/logger"
	"github.com/qdu-future/paramtune/lib/document"
	"github.com/qdu-future/paramtune/lib/params"
)

var log = logger.GetGoI2PLogger()

// Engine registers editable leaves and synchronizes their edits.
type Engine struct {
	resolve params.Resolver

	mu       sync.Mutex
	bindings []*Binding
	index    map[string]int
}

// NewEngine returns an engine resolving command names with
// params.ResolveCommandName.
func NewEngine() *Engine {
	return NewEngineWithResolver(params.ResolveCommandName)
}

func NewEngineWithResolver(resolve params.Resolver) *Engine {
	if resolve == nil {
		resolve = params.ResolveCommandName
	}
	return &Engine{resolve: resolve, index: make(map[string]int)}
}

// Register binds a leaf of subtree to sender under the module tag. The
// command name is resolved here, once. sender may be nil, in which case
// Apply reports ErrNotConnected. Registering the same tag and path again
// replaces the earlier binding.
//
// A command name already used by another path of the same module is logged
// as a collision; both bindings are kept and send the same command.
func (e *Engine) Register(desc params.Descriptor, subtree *params.Group, sender Sender, tag string) *Binding {
	b := &Binding{
		Tag:        tag,
		Command:    e.resolve(desc.Path),
		Descriptor: desc,
		subtree:    subtree,
		sender:     sender,
		text:       desc.Value.String(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	key := bindingKey(tag, desc.Path)
	if i, ok := e.index[key]; ok {
		log.WithFields(logger.Fields{
			"at":     "paramsync.Engine.Register",
			"module": tag,
			"path":   desc.Path.String(),
		}).Debug("binding_replaced")
		e.bindings[i] = b
		return b
	}

	for _, other := range e.bindings {
		if other.Tag == tag && other.Command == b.Command {
			log.WithFields(logger.Fields{
				"at":       "paramsync.Engine.Register",
				"module":   tag,
				"command":  b.Command,
				"path":     desc.Path.String(),
				"existing": other.Path().String(),
			}).Warn("command_name_collision")
		}
	}

	e.index[key] = len(e.bindings)
	e.bindings = append(e.bindings, b)
	return b
}

// RegisterModule walks subtree and registers every editable leaf under tag.
// Unsupported nodes are logged and skipped; they are returned so an editing
// surface can still show them.
func (e *Engine) RegisterModule(tag string, subtree *params.Group, sender Sender) ([]*Binding, []params.Skipped) {
	descs, skipped := params.Descriptors(subtree)
	for _, s := range skipped {
		log.WithFields(logger.Fields{
			"at":     "paramsync.Engine.RegisterModule",
			"module": tag,
			"path":   s.Path.String(),
			"kind":   string(s.Kind),
		}).Debug("parameter_not_editable")
	}

	out := make([]*Binding, 0, len(descs))
	for _, d := range descs {
		out = append(out, e.Register(d, subtree, sender, tag))
	}
	log.WithFields(logger.Fields{
		"at":        "paramsync.Engine.RegisterModule",
		"module":    tag,
		"editable":  len(out),
		"skipped":   len(skipped),
		"connected": sender != nil,
	}).Debug("module_registered")
	return out, skipped
}

// Lookup returns the binding for a module tag and path, or nil.
func (e *Engine) Lookup(tag string, path params.Path) *Binding {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i, ok := e.index[bindingKey(tag, path)]; ok {
		return e.bindings[i]
	}
	return nil
}

// Bindings returns the registered bindings in registration order.
func (e *Engine) Bindings() []*Binding {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Binding, len(e.bindings))
	copy(out, e.bindings)
	return out
}

// ModuleBindings returns the bindings registered under tag.
func (e *Engine) ModuleBindings(tag string) []*Binding {
	var out []*Binding
	for _, b := range e.Bindings() {
		if b.Tag == tag {
			out = append(out, b)
		}
	}
	return out
}

// SetText records edited text for b without sending it. PullAll picks it up.
func (e *Engine) SetText(b *Binding, text string) {
	b.setText(text)
}

// Apply parses rawText with b's fixed type and sends the value. On a parse
// failure a *params.ValidationError is returned and nothing is sent or
// changed. On success the binding's text becomes rawText and the parsed value
// is returned; the remote side is not asked to confirm it.
func (e *Engine) Apply(b *Binding, rawText string) (params.Value, error) {
	v, err := params.ParseValue(b.Type(), rawText)
	if err != nil {
		var ve *params.ValidationError
		if errors.As(err, &ve) {
			ve.Path = b.Path()
		}
		log.WithFields(logger.Fields{
			"at":     "paramsync.Engine.Apply",
			"module": b.Tag,
			"path":   b.Path().String(),
			"text":   rawText,
		}).Debug("apply_rejected_invalid_value")
		return params.Value{}, err
	}

	if b.sender == nil {
		return params.Value{}, ErrNotConnected
	}
	if err := b.sender.SendCommand(b.Tag, b.Command, v.Wire()); err != nil {
		return params.Value{}, err
	}

	b.setText(rawText)
	log.WithFields(logger.Fields{
		"at":      "paramsync.Engine.Apply",
		"module":  b.Tag,
		"command": b.Command,
		"value":   v.String(),
	}).Info("parameter_sent")
	return v, nil
}

// SaveToStore writes doc through store. Call PullAll first: saving never
// reads binding text itself.
func (e *Engine) SaveToStore(store Saver, path string, doc *document.Document) bool {
	return store.Save(path, doc)
}

// Saver persists a document. *document.Store implements it.
type Saver interface {
	Save(path string, doc *document.Document) bool
}
