package session

import (
	"context"
	"fmt"

	"github.com/go-i2p/logger"
	"github.com/qdu-future/paramtune/lib/channel"
	"github.com/qdu-future/paramtune/lib/config"
	"github.com/qdu-future/paramtune/lib/document"
	"github.com/qdu-future/paramtune/lib/params"
	"github.com/qdu-future/paramtune/lib/paramsync"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Dialer opens a channel to the remote process. channel.Dial is one.
type Dialer func(ctx context.Context, cfg *channel.Config) (*channel.Channel, error)

// Module is one configured module in a session.
type Module struct {
	Tag  string
	ID   string
	Name string

	// Subtree is the module's cfg mapping. When Linked is false it is an
	// empty group not attached to the document.
	Subtree *params.Group
	Linked  bool

	// Channel is nil when the session is offline or dialing failed.
	Channel *channel.Channel
	Client  *channel.ModuleClient
	DialErr error

	Bindings []*paramsync.Binding
	Skipped  []params.Skipped
}

// Connected reports whether the module has a live channel.
func (m *Module) Connected() bool {
	return m.Channel != nil && m.Channel.Connected()
}

// Session is one document being edited against one remote process.
type Session struct {
	store   *document.Store
	path    string
	doc     *document.Document
	engine  *paramsync.Engine
	modules []*Module
}

// Open loads cfg.Document from store and registers every configured module.
// Each module gets its own channel from dial; a failed dial is recorded on
// the module and the session still opens. A nil dial opens the session
// offline, which is enough for listing and saving.
func Open(ctx context.Context, cfg config.ParamTuneConfig, store *document.Store, dial Dialer) *Session {
	doc := store.Load(cfg.Document)
	s := &Session{
		store:  store,
		path:   cfg.Document,
		doc:    doc,
		engine: paramsync.NewEngine(),
	}

	for _, mc := range cfg.Modules {
		m := &Module{Tag: mc.Tag, ID: mc.ID, Name: mc.Name}
		m.Subtree, m.Linked = document.FindModuleSubtree(doc, mc.ID, mc.Name)

		var sender paramsync.Sender
		if dial != nil {
			ch, err := dial(ctx, &channel.Config{
				Host:         cfg.Remote.Host,
				Port:         cfg.Remote.Port,
				DialTimeout:  cfg.Remote.DialTimeout,
				WriteTimeout: cfg.Remote.WriteTimeout,
			})
			if err != nil {
				m.DialErr = err
				log.WithFields(logger.Fields{
					"at":     "session.Open",
					"module": mc.Tag,
				}).WithError(err).Warn("module_offline")
			} else {
				m.Channel = ch
				m.Client = channel.NewModuleClient(mc.Tag, ch)
				sender = ch
			}
		}

		m.Bindings, m.Skipped = s.engine.RegisterModule(mc.Tag, m.Subtree, sender)
		s.modules = append(s.modules, m)
	}

	log.WithFields(logger.Fields{
		"at":       "session.Open",
		"document": cfg.Document,
		"modules":  len(s.modules),
		"bindings": len(s.engine.Bindings()),
	}).Info("session_opened")
	return s
}

func (s *Session) Document() *document.Document { return s.doc }
func (s *Session) Engine() *paramsync.Engine     { return s.engine }
func (s *Session) Path() string                  { return s.path }
func (s *Session) Modules() []*Module            { return s.modules }

// Module returns the module with the given tag.
func (s *Session) Module(tag string) (*Module, bool) {
	for _, m := range s.modules {
		if m.Tag == tag {
			return m, true
		}
	}
	return nil, false
}

// Set applies raw to the leaf at a dotted path of a module, as an edit in
// the editor would.
func (s *Session) Set(tag, path, raw string) (params.Value, error) {
	if _, ok := s.Module(tag); !ok {
		return params.Value{}, fmt.Errorf("%w: %s", ErrUnknownModule, tag)
	}
	b := s.engine.Lookup(tag, params.ParsePath(path))
	if b == nil {
		return params.Value{}, fmt.Errorf("%w: %s %s", ErrUnknownParameter, tag, path)
	}
	return s.engine.Apply(b, raw)
}

// Show asks the remote module to print its parameters.
func (s *Session) Show(tag string) error {
	m, ok := s.Module(tag)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, tag)
	}
	if m.Client == nil {
		return paramsync.ErrNotConnected
	}
	return m.Client.Show()
}

// Save pulls every binding's text into the document and writes it to the
// session's path. Leaves whose text does not parse are reported in the
// PullReport and keep their previous document value.
func (s *Session) Save() (paramsync.PullReport, error) {
	report := s.engine.PullAll()
	if err := s.store.SaveErr(s.path, s.doc); err != nil {
		return report, oops.In("session").With("path", s.path).Wrapf(err, "save")
	}
	log.WithFields(logger.Fields{
		"at":      "session.Session.Save",
		"path":    s.path,
		"changed": len(report.Changed),
		"skipped": len(report.Skipped),
	}).Info("document_saved")
	return report, nil
}

// Close closes every module channel. It is safe to call more than once.
func (s *Session) Close() error {
	for _, m := range s.modules {
		if m.Channel != nil {
			m.Channel.Close()
		}
	}
	return nil
}
