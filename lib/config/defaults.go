package config

import (
	"time"

	"github.com/go-i2p/logger"
	"github.com/qdu-future/paramtune/lib/channel"
)

// ModuleConfig maps a remote module tag to the document module whose cfg
// subtree it is tuned from.
type ModuleConfig struct {
	Tag  string `mapstructure:"tag" yaml:"tag"`
	ID   string `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
}

// RemoteConfig is the endpoint of the process being tuned.
type RemoteConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ServerConfig configures `paramtune serve`.
type ServerConfig struct {
	ListenAddress     string  `mapstructure:"listen_address"`
	MaxLinesPerSecond float64 `mapstructure:"max_lines_per_second"`
}

// ParamTuneConfig is the full tool configuration.
type ParamTuneConfig struct {
	Document string         `mapstructure:"document"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Modules  []ModuleConfig `mapstructure:"modules"`
	Server   ServerConfig   `mapstructure:"server"`
}

// Module returns the module entry with the given tag.
func (c ParamTuneConfig) Module(tag string) (ModuleConfig, bool) {
	for _, m := range c.Modules {
		if m.Tag == tag {
			return m, true
		}
	}
	return ModuleConfig{}, false
}

// Defaults returns the built-in configuration: the robot's default document
// and endpoint, and the two armor modules.
func Defaults() ParamTuneConfig {
	return ParamTuneConfig{
		Document: "User/xrobot.yaml",
		Remote: RemoteConfig{
			Host:         "127.0.0.1",
			Port:         5555,
			DialTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Modules: []ModuleConfig{
			{Tag: channel.TagArmorDetector, ID: "ArmorDetector_0", Name: "ArmorDetector"},
			{Tag: channel.TagArmorTracker, ID: "ArmorTracker_0", Name: "ArmorTracker"},
		},
		Server: ServerConfig{
			ListenAddress: "127.0.0.1:5555",
		},
	}
}

// Validate returns the first invalid value found in cfg.
func Validate(cfg ParamTuneConfig) error {
	validators := []func() error{
		func() error { return validateRemote(cfg.Remote) },
		func() error { return validateModules(cfg.Modules) },
		func() error { return validateServer(cfg.Server) },
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			log.WithFields(logger.Fields{
				"at":     "config.Validate",
				"reason": "invalid_value",
			}).WithError(err).Error("configuration_invalid")
			return err
		}
	}
	return nil
}

func validateRemote(remote RemoteConfig) error {
	if remote.Host == "" {
		return newValidationError("remote.host must not be empty")
	}
	if remote.Port < 1 || remote.Port > 65535 {
		return newValidationError("remote.port must be between 1 and 65535")
	}
	if remote.DialTimeout < 0 || remote.WriteTimeout < 0 {
		return newValidationError("remote timeouts must not be negative")
	}
	return nil
}

func validateModules(modules []ModuleConfig) error {
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if m.Tag == "" {
			return newValidationError("modules[].tag must not be empty")
		}
		if m.ID == "" && m.Name == "" {
			return newValidationError("module " + m.Tag + " needs an id or a name")
		}
		if seen[m.Tag] {
			return newValidationError("module tag " + m.Tag + " is listed twice")
		}
		seen[m.Tag] = true
	}
	return nil
}

func validateServer(server ServerConfig) error {
	if server.ListenAddress == "" {
		return newValidationError("server.listen_address must not be empty")
	}
	if server.MaxLinesPerSecond < 0 {
		return newValidationError("server.max_lines_per_second must not be negative")
	}
	return nil
}

type validationError struct {
	message string
}

func newValidationError(message string) error {
	return &validationError{message: message}
}

func (e *validationError) Error() string {
	return "configuration validation failed: " + e.message
}
