package channel

// Module tags understood by the robot's parameter server.
const (
	TagArmorDetector = "armor_detector"
	TagArmorTracker  = "armor_tracker"
)

// CommandShow asks a module to dump its parameters to the remote log.
const CommandShow = "show"

// ModuleClient sends commands for a single module over a Channel.
type ModuleClient struct {
	Tag string
	ch  *Channel
}

func NewModuleClient(tag string, ch *Channel) *ModuleClient {
	return &ModuleClient{Tag: tag, ch: ch}
}

func NewArmorDetector(ch *Channel) *ModuleClient {
	return NewModuleClient(TagArmorDetector, ch)
}

func NewArmorTracker(ch *Channel) *ModuleClient {
	return NewModuleClient(TagArmorTracker, ch)
}

// Send writes `<tag> <command> <args...>`.
func (m *ModuleClient) Send(command string, args ...any) error {
	return m.ch.SendCommand(m.Tag, command, args...)
}

// Show requests a parameter dump on the remote side.
func (m *ModuleClient) Show() error {
	return m.ch.Show(m.Tag)
}

// Channel returns the underlying channel.
func (m *ModuleClient) Channel() *Channel { return m.ch }

func (m *ModuleClient) Close() error {
	return m.ch.Close()
}
