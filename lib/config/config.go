package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/go-i2p/logger"
	"github.com/qdu-future/paramtune/lib/util"
	"github.com/samber/oops"
	"github.com/spf13/viper"
)

var (
	CfgFile string
	log     = logger.GetGoI2PLogger()
)

const PARAMTUNE_BASE_DIR = ".paramtune"

// InitConfig loads defaults, the config file and environment overrides into
// the global viper instance. A missing default config file is not an error;
// a missing file named by CfgFile is.
func InitConfig() error {
	if CfgFile != "" {
		viper.SetConfigFile(CfgFile)
	} else {
		viper.AddConfigPath(BuildParamTuneDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnv()

	return handleConfigFile()
}

func setDefaults() {
	d := Defaults()

	viper.SetDefault("document", d.Document)

	viper.SetDefault("remote.host", d.Remote.Host)
	viper.SetDefault("remote.port", d.Remote.Port)
	viper.SetDefault("remote.dial_timeout", d.Remote.DialTimeout)
	viper.SetDefault("remote.write_timeout", d.Remote.WriteTimeout)

	modules := make([]map[string]any, 0, len(d.Modules))
	for _, m := range d.Modules {
		modules = append(modules, map[string]any{"tag": m.Tag, "id": m.ID, "name": m.Name})
	}
	viper.SetDefault("modules", modules)

	viper.SetDefault("server.listen_address", d.Server.ListenAddress)
	viper.SetDefault("server.max_lines_per_second", d.Server.MaxLinesPerSecond)
}

func bindEnv() {
	viper.SetEnvPrefix("PARAMTUNE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func handleConfigFile() error {
	err := viper.ReadInConfig()
	if err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("using_config_file")
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) && CfgFile == "" {
		log.WithField("dir", BuildParamTuneDirPath()).Debug("no_config_file_using_defaults")
		return nil
	}
	return oops.In("config").With("file", CfgFile).Wrapf(err, "read config")
}

// CurrentConfig builds a ParamTuneConfig from the current viper settings.
// An unparsable modules list falls back to the defaults.
func CurrentConfig() ParamTuneConfig {
	cfg := ParamTuneConfig{
		Document: util.ExpandHome(viper.GetString("document")),
		Remote: RemoteConfig{
			Host:         viper.GetString("remote.host"),
			Port:         viper.GetInt("remote.port"),
			DialTimeout:  viper.GetDuration("remote.dial_timeout"),
			WriteTimeout: viper.GetDuration("remote.write_timeout"),
		},
		Server: ServerConfig{
			ListenAddress:     viper.GetString("server.listen_address"),
			MaxLinesPerSecond: viper.GetFloat64("server.max_lines_per_second"),
		},
	}

	if err := viper.UnmarshalKey("modules", &cfg.Modules); err != nil || len(cfg.Modules) == 0 {
		if err != nil {
			log.WithField("at", "config.CurrentConfig").WithError(err).Warn("invalid_modules_using_defaults")
		}
		cfg.Modules = Defaults().Modules
	}
	return cfg
}

// BuildParamTuneDirPath returns $HOME/.paramtune.
func BuildParamTuneDirPath() string {
	return filepath.Join(util.UserHome(), PARAMTUNE_BASE_DIR)
}
