// Package config loads paramtune's own settings: which YAML document to edit,
// where the remote process listens, and which document modules map to which
// remote module tags.
//
// Settings come from, in increasing priority: built-in defaults,
// $HOME/.paramtune/config.yaml (or the file named by --config), PARAMTUNE_*
// environment variables, and command-line flags bound by the caller.
// Nested keys map to environment variables with dots replaced by
// underscores, so remote.port is PARAMTUNE_REMOTE_PORT.
package config
