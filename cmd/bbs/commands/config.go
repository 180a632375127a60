package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/trezero/bookmark-bar-switcher/internal/config"
	"github.com/trezero/bookmark-bar-switcher/internal/errors"
	"github.com/trezero/bookmark-bar-switcher/internal/logging"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show bbs configuration",
	Long: `Show the effective configuration in YAML, after defaults, the config
file, .env and BBS_* environment variables are applied. Secrets are masked.

Validation problems are listed after the values.`,
	Example: `  # Show all configuration
  bbs config

  # Get a specific value
  bbs config get state.backend

  See Also: bbs config get`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigListWithWriter(cmd.OutOrStdout())
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys. Array values are printed one per line.`,
	Example: `  bbs config get drive.max_backups
  bbs config get oauth.scopes

  See Also: bbs config`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigGetWithWriter(cmd.OutOrStdout(), args[0])
	},
}

func runConfigListWithWriter(w io.Writer) error {
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}

	cfg := *loadedConfig
	cfg.State.Redis.Password = maskSecret(cfg.State.Redis.Password)
	cfg.Drive.Token = maskSecret(cfg.Drive.Token)
	cfg.OAuth.ClientSecret = maskSecret(cfg.OAuth.ClientSecret)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	if _, err := w.Write(data); err != nil {
		return err
	}

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(w, "%s\n", styleMuted("# loaded from "+used))
	}
	for _, e := range config.Validate(loadedConfig) {
		fmt.Fprintf(w, "%s %v\n", styleWarn("invalid:"), e)
	}
	return nil
}

func runConfigGetWithWriter(w io.Writer, key string) error {
	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	default:
		val := viper.GetString(key)
		if secretKeys[key] {
			val = maskSecret(val)
		}
		fmt.Fprintln(w, val)
	}
	return nil
}

// secretKeys are printed masked.
var secretKeys = map[string]bool{
	"state.redis.password": true,
	"drive.token":          true,
	"oauth.client_secret":  true,
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return logging.MaskValue(s)
}
