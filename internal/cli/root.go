// Package cli implements the goel command-line tool.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// state carries configuration and the built application from the root
// command's hooks to the subcommands.
type state struct {
	viper      *viper.Viper
	configPath string
	app        *app
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	s := &state{viper: newViper()}

	rootCmd := &cobra.Command{
		Use:           "goel",
		Short:         "Parse, compile and evaluate expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(s.viper, s.configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s.app = a
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if s.app == nil {
				return nil
			}
			return s.app.Close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&s.configPath, "config", "c", "", "configuration file (YAML)")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.Int("cache-size", 0, "expression cache capacity (0 for the default)")
	flags.String("redis-addr", "", "address of a Redis server sharing parsed expressions")
	flags.StringSlice("extensions", nil, "function providers to register: "+extensionNames())
	flags.Int("max-expression-length", 0, "longest accepted expression in bytes (negative disables the limit)")

	bind := map[string]string{
		"log.format":            "log-format",
		"log.level":             "log-level",
		"cache.size":            "cache-size",
		"cache.redis.addr":      "redis-addr",
		"extensions":            "extensions",
		"max_expression_length": "max-expression-length",
	}
	for key, flag := range bind {
		// the flag names are static, binding cannot fail
		_ = s.viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newEvaluateCommand(s),
		newCompileCommand(s),
		newParseCommand(s),
		newLintCommand(s),
		newTokensCommand(),
		newFunctionsCommand(s),
		newReplCommand(s),
		newVersionCommand(),
	)

	return rootCmd
}
