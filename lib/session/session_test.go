package session

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/qdu-future/paramtune/lib/channel"
	"github.com/qdu-future/paramtune/lib/config"
	"github.com/qdu-future/paramtune/lib/document"
	"github.com/qdu-future/paramtune/lib/parambus"
	"github.com/qdu-future/paramtune/lib/params"
	"github.com/qdu-future/paramtune/lib/paramsync"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const robotYAML = `# robot config
modules:
  - id: ArmorDetector_0
    name: ArmorDetector
    constructor_args:
      cfg:
        binary_thres: 100
        light:
          min_ratio: 0.1
  - id: ArmorTracker_0
    name: ArmorTracker
    constructor_args:
      cfg:
        tracking_thres: 5
        lost_time_thres: 0.3
`

type harness struct {
	fs     afero.Fs
	store  *document.Store
	cfg    config.ParamTuneConfig
	tables map[string]*parambus.Table
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/User/xrobot.yaml", []byte(robotYAML), 0o644))

	cfg := config.Defaults()
	cfg.Document = "/User/xrobot.yaml"
	return &harness{fs: fs, store: document.NewStore(fs), cfg: cfg}
}

// serve starts a parameter server seeded from the harness document and
// points the config at it.
func (h *harness) serve(t *testing.T) {
	t.Helper()
	doc := h.store.Load(h.cfg.Document)
	bus := parambus.NewBus()
	h.tables = make(map[string]*parambus.Table)
	for _, m := range h.cfg.Modules {
		g, _ := document.FindModuleSubtree(doc, m.ID, m.Name)
		table := parambus.TableFromGroup(m.Tag, g)
		bus.Register(m.Tag, table)
		h.tables[m.Tag] = table
	}

	server, err := parambus.NewServer(&parambus.ServerConfig{ListenAddr: "127.0.0.1:0"}, bus)
	require.NoError(t, err)
	require.NoError(t, server.Start())
	t.Cleanup(func() { server.Stop() })

	h.cfg.Remote.Port = server.Addr().(*net.TCPAddr).Port
	h.cfg.Remote.DialTimeout = time.Second
}

func (h *harness) open(t *testing.T, dial Dialer) *Session {
	t.Helper()
	s := Open(context.Background(), h.cfg, h.store, dial)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenOfflineRegistersModules(t *testing.T) {
	h := newHarness(t)
	s := h.open(t, nil)

	require.Len(t, s.Modules(), 2)
	det, ok := s.Module("armor_detector")
	require.True(t, ok)
	assert.True(t, det.Linked)
	assert.False(t, det.Connected())
	assert.Nil(t, det.DialErr)
	require.Len(t, det.Bindings, 2)
	assert.Equal(t, "binary_thres", det.Bindings[0].Command)
	assert.Equal(t, "min_ratio", det.Bindings[1].Command)

	_, err := s.Set("armor_detector", "binary_thres", "120")
	assert.True(t, errors.Is(err, paramsync.ErrNotConnected))
	assert.True(t, errors.Is(s.Show("armor_tracker"), paramsync.ErrNotConnected))
}

func TestOpenRecordsDialFailure(t *testing.T) {
	h := newHarness(t)
	refused := errors.New("connection refused")
	s := h.open(t, func(context.Context, *channel.Config) (*channel.Channel, error) {
		return nil, refused
	})

	for _, m := range s.Modules() {
		assert.ErrorIs(t, m.DialErr, refused)
		assert.Nil(t, m.Channel)
		assert.NotEmpty(t, m.Bindings, "bindings exist even without a channel")
	}
}

func TestDialFailureIsolatedToOneModule(t *testing.T) {
	h := newHarness(t)
	h.serve(t)
	refused := errors.New("connection refused")
	calls := 0
	s := h.open(t, func(ctx context.Context, cfg *channel.Config) (*channel.Channel, error) {
		calls++
		if calls == 1 {
			return nil, refused
		}
		return channel.Dial(ctx, cfg)
	})

	det, _ := s.Module("armor_detector")
	trk, _ := s.Module("armor_tracker")
	require.ErrorIs(t, det.DialErr, refused)
	require.True(t, trk.Connected())

	_, err := s.Set("armor_detector", "binary_thres", "120")
	assert.ErrorIs(t, err, paramsync.ErrNotConnected)

	_, err = s.Set("armor_tracker", "tracking_thres", "7")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		v, _ := h.tables["armor_tracker"].Get("tracking_thres")
		return v.Int() == 7
	}, 2*time.Second, 10*time.Millisecond)

	got, _ := h.tables["armor_detector"].Get("binary_thres")
	assert.Equal(t, int64(100), got.Int())
}

func TestOpenUnlinkedModule(t *testing.T) {
	h := newHarness(t)
	h.cfg.Modules = append(h.cfg.Modules, config.ModuleConfig{Tag: "energy_detector", ID: "EnergyDetector_0"})
	s := h.open(t, nil)

	m, ok := s.Module("energy_detector")
	require.True(t, ok)
	assert.False(t, m.Linked)
	assert.Empty(t, m.Bindings)
}

func TestSetReachesRemoteTable(t *testing.T) {
	h := newHarness(t)
	h.serve(t)
	s := h.open(t, channel.Dial)

	det, _ := s.Module("armor_detector")
	require.True(t, det.Connected())

	v, err := s.Set("armor_detector", "light.min_ratio", "0.25")
	require.NoError(t, err)
	assert.Equal(t, "0.250000", v.String())

	assert.Eventually(t, func() bool {
		got, _ := h.tables["armor_detector"].Get("min_ratio")
		return got.Float() == 0.25
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Show("armor_tracker"))
}

func TestSetRejects(t *testing.T) {
	h := newHarness(t)
	s := h.open(t, nil)

	_, err := s.Set("armor_shooter", "x", "1")
	assert.True(t, errors.Is(err, ErrUnknownModule))

	_, err = s.Set("armor_detector", "light.max_ratio", "1")
	assert.True(t, errors.Is(err, ErrUnknownParameter))

	_, err = s.Set("armor_detector", "binary_thres", "12.5")
	var ve *params.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "binary_thres", ve.Path.String())

	assert.True(t, errors.Is(s.Show("armor_shooter"), ErrUnknownModule))
}

func TestSaveWritesEditedText(t *testing.T) {
	h := newHarness(t)
	h.serve(t)
	s := h.open(t, channel.Dial)

	_, err := s.Set("armor_tracker", "tracking_thres", "8")
	require.NoError(t, err)
	s.Engine().SetText(s.Engine().Lookup("armor_tracker", params.ParsePath("lost_time_thres")), "not a number")

	report, err := s.Save()
	require.NoError(t, err)
	require.Len(t, report.Changed, 1)
	assert.Equal(t, "tracking_thres", report.Changed[0].Path.String())
	require.Len(t, report.Skipped, 1)

	data, err := afero.ReadFile(h.fs, "/User/xrobot.yaml")
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "# robot config"))
	assert.Contains(t, text, "tracking_thres: 8")
	assert.Contains(t, text, "lost_time_thres: 0.3")
	assert.Contains(t, text, "binary_thres: 100")
}

func TestSaveFailureKeepsFile(t *testing.T) {
	h := newHarness(t)
	s := Open(context.Background(), h.cfg, document.NewStore(afero.NewReadOnlyFs(h.fs)), nil)
	s.Engine().SetText(s.Engine().Lookup("armor_detector", params.ParsePath("binary_thres")), "130")

	_, err := s.Save()
	var ioErr *document.IOError
	assert.True(t, errors.As(err, &ioErr))

	data, readErr := afero.ReadFile(h.fs, "/User/xrobot.yaml")
	require.NoError(t, readErr)
	assert.Equal(t, robotYAML, string(data))
}

func TestCloseDisconnectsModules(t *testing.T) {
	h := newHarness(t)
	h.serve(t)
	s := h.open(t, channel.Dial)

	require.NoError(t, s.Close())
	for _, m := range s.Modules() {
		assert.False(t, m.Connected())
	}
	assert.NoError(t, s.Close())
}
