package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"foodwaste/internal/backend"
	"foodwaste/internal/cli"
	"foodwaste/internal/config"
	"foodwaste/internal/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries the per-invocation settings shared by all commands.
type app struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "foodwaste-cli",
		Short: "Log and analyse household food waste",
		Long: `foodwaste-cli records wasted food, reports statistics and answers
questions about your waste, working directly against the configured store.

Settings come from the environment (see .env), an optional foodwaste.yaml
and the flags below, in increasing order of precedence.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
		Version:           version,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./foodwaste.yaml or $HOME/.config/foodwaste/foodwaste.yaml)")
	flags.String("backend", "", "data backend (memory, sqlite, postgres)")
	flags.String("sqlite-path", "", "SQLite database path")
	flags.String("postgres-dsn", "", "Postgres connection string")
	flags.String("seed-file", "", "JSON seed file for the memory backend")
	flags.String("chat-mode", "", "chat mode (offline, online, auto)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	_ = a.v.BindPFlag("data_backend", flags.Lookup("backend"))
	_ = a.v.BindPFlag("sqlite_db_path", flags.Lookup("sqlite-path"))
	_ = a.v.BindPFlag("postgres_dsn", flags.Lookup("postgres-dsn"))
	_ = a.v.BindPFlag("seed_file", flags.Lookup("seed-file"))
	_ = a.v.BindPFlag("chat_mode", flags.Lookup("chat-mode"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.deleteCmd(),
		a.statsCmd(),
		a.chatCmd(),
		a.importCmd(),
		a.exportCmd(),
	)
	return root
}

func main() {
	cli.LoadEnvFile()

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home + "/.config/foodwaste")
		}
		a.v.SetConfigName("foodwaste")
		a.v.SetConfigType("yaml")
	}
	a.v.AutomaticEnv()
	a.v.SetDefault("log_level", "warn")

	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// loadConfig builds the application config with viper overrides applied.
func (a *app) loadConfig() (*config.Config, error) {
	cfg := config.Load()
	cfg.ApplyOverrides(a.v.GetString)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openBackend wires the waste service for one command. Logs go to stderr.
func (a *app) openBackend(cmd *cobra.Command) (*backend.Backend, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(cfg, log.ComponentCLI, cmd.ErrOrStderr())
	b, err := backend.NewFactory(logger, nil).CreateBackend(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backend: %w", err)
	}
	return b, nil
}

func closeBackend(b *backend.Backend) {
	if err := b.Close(); err != nil {
		slog.Error("failed to close backend", "error", err)
	}
}
