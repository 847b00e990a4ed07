package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/world-explorer/client/api"
	"github.com/jrsteele09/world-explorer/client/credentials"
	"github.com/jrsteele09/world-explorer/client/session"
	"github.com/jrsteele09/world-explorer/internal/config"
	"github.com/jrsteele09/world-explorer/internal/logging"
)

// app holds what every command needs once flags and config.yaml are resolved.
type app struct {
	configPath string
	baseURL    string
	tokenFile  string
	logLevel   string

	config  config.ClientConfig
	client  *api.Client
	session *session.Manager
	log     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "explorer",
		Short: "Command line client for the World Explorer API",
		Long: `explorer signs in to a World Explorer server and manages your favourite
countries and quiz results.

The access token is kept in a file under your user config directory. The
refresh cookie lives only for the duration of one command.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default is $HOME/.config/world-explorer/config.yaml)")
	flags.StringVar(&a.baseURL, "base-url", "", "API base URL (overrides base_url)")
	flags.StringVar(&a.tokenFile, "token-file", "", "access token file (overrides token_file)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoAmICmd(a),
		newPasswordCmd(a),
		newFavoritesCmd(a),
		newQuizCmd(a),
		newHealthCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.configPath == "" {
		path, err := config.DefaultClientConfigPath()
		if err != nil {
			return err
		}
		a.configPath = path
	}
	cfg, err := config.LoadClientConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.tokenFile != "" {
		cfg.TokenFile = a.tokenFile
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if cfg.TokenFile == "" {
		if cfg.TokenFile, err = credentials.DefaultPath(); err != nil {
			return err
		}
	}
	a.config = cfg
	a.log = logging.SetupWriter(cmd.ErrOrStderr(), "DEV", cfg.LogLevel)

	stderr := cmd.ErrOrStderr()
	opts := []api.ClientOption{
		api.WithLogger(a.log),
		api.WithSessionExpiredHandler(func() {
			fmt.Fprintln(stderr, "Session expired. Run: explorer login")
		}),
		api.WithStateObserver(func(tr api.Transition) {
			a.log.Debug().Str("method", tr.Method).Str("path", tr.Path).Str("state", string(tr.State)).Msg("request")
		}),
	}

	a.client, err = api.NewClient(cfg.BaseURL, credentials.NewFileStore(cfg.TokenFile), opts...)
	if err != nil {
		return err
	}
	a.session = session.New(a.client, session.WithLogger(a.log))
	return nil
}

// requireSession restores the session from the token file.
func (a *app) requireSession(ctx context.Context) (session.Snapshot, error) {
	if err := a.session.Init(ctx); err != nil {
		return session.Snapshot{}, err
	}
	snap := a.session.Snapshot()
	if !snap.IsAuthenticated {
		return snap, errNotLoggedIn
	}
	return snap, nil
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is healthy\n", a.config.BaseURL)
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save client settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:     %s\n", a.configPath)
			fmt.Fprintf(out, "base_url:   %s\n", a.config.BaseURL)
			fmt.Fprintf(out, "token_file: %s\n", a.config.TokenFile)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the resolved settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.SaveClientConfig(a.configPath, a.config); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", a.configPath)
			return nil
		},
	})
	return configCmd
}
