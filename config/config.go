// Package config wires the CLI flags and optional config file/environment
// variables shared by the server and client binaries.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the resolved set of settings a binary needs to start.
type Config struct {
	Host     string
	Port     int
	LogLevel string
}

// Addr formats Host/Port as a dial/listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BindFlags registers the shared flags on cmd and binds them through
// viper so CMDNET_HOST/CMDNET_PORT/CMDNET_LOG_LEVEL and an optional
// --config file can override the defaults.
func BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("host", "127.0.0.1", "server host")
	cmd.PersistentFlags().Int("port", 50007, "server port")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warning, error)")
	cmd.PersistentFlags().String("config", "", "optional YAML config file")

	v := viper.New()
	v.SetEnvPrefix("cmdnet")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlag("host", cmd.PersistentFlags().Lookup("host"))
	_ = v.BindPFlag("port", cmd.PersistentFlags().Lookup("port"))
	_ = v.BindPFlag("log-level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.PersistentFlags().GetString("config"); path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file %s: %w", path, err)
			}
		}
		cmd.SetContext(withViper(cmd.Context(), v))
		return nil
	}
}

// Load resolves a Config from cmd's bound flags/viper instance.
func Load(cmd *cobra.Command) Config {
	v := viperFrom(cmd.Context())
	if v == nil {
		v = viper.GetViper()
	}
	return Config{
		Host:     v.GetString("host"),
		Port:     v.GetInt("port"),
		LogLevel: v.GetString("log-level"),
	}
}
