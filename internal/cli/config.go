package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/speech2text/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/speech2text/config.toml
(or $XDG_CONFIG_HOME/speech2text/config.toml). Keys missing from the file
fall back to environment variables, then to built-in defaults.

Supported settings:
` + keyHelp(),
		Example: `  speech2text config set language fr
  speech2text config set output_dir ~/Documents/transcripts
  speech2text config get model
  speech2text config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// keyHelp lists every key with its environment fallback.
func keyHelp() string {
	var b strings.Builder
	for _, k := range config.Keys() {
		fmt.Fprintf(&b, "  %-16s (env: %s)\n", k, config.EnvFor(k))
	}
	return strings.TrimRight(b.String(), "\n")
}

func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Values are validated before they are written: languages must be known
codes, formats one of text, json, srt, vtt, verbose_json, and output_dir is
created if missing and must be writable.`,
		Example: `  speech2text config set response_format srt
  speech2text config set max_retries 0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value from the config file, or its environment fallback, to stdout.
Prints nothing if neither is set.`,
		Example: `  speech2text config get language`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all configuration values",
		Long:    `List values from the config file and environment variable fallbacks.`,
		Example: `  speech2text config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

func runConfigSet(env *Env, key, value string) error {
	if err := config.ValidateValue(key, value); err != nil {
		return err
	}
	if key == config.KeyOutputDir || key == config.KeyFFmpegPath || key == config.KeyFFprobePath {
		value = config.ExpandPath(value)
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

func runConfigGet(env *Env, key string) error {
	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value = env.Getenv(config.EnvFor(key))
	}
	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	printed := 0
	for _, key := range config.Keys() {
		value, ok := data[key]
		if !ok {
			if v := env.Getenv(config.EnvFor(key)); v != "" {
				value = v + " (from env)"
			}
		}
		if value == "" {
			continue
		}
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, value)
		printed++
	}

	if printed == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		fmt.Fprintln(env.Stdout, keyHelp())
	}
	return nil
}
