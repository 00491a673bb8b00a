package main

import (
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/medivault/shell/internal/app"
	"github.com/medivault/shell/internal/client"
	"github.com/medivault/shell/internal/config"
	"github.com/medivault/shell/internal/credential"
	"github.com/medivault/shell/internal/logging"
	"github.com/medivault/shell/internal/session"
	"github.com/spf13/cobra"
)

// options are the flags shared by every command.
type options struct {
	configPath string
	baseURL    string
	wsURL      string
	logLevel   string
	storage    string
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "medivault",
		Short: "Terminal shell for the MediVault inventory system",
		Long: `medivault opens the MediVault navigation shell in the terminal.

The shell shows the signed-in user, a live notification badge fed by the
server's push channel, and the inventory item form.

Quick Start:
  medivault login --token <jwt>    # store a credential
  medivault                        # open the shell
  medivault logout                 # end the session`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runShell(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", config.DefaultPath(), "Path to the YAML config file")
	flags.StringVar(&o.baseURL, "url", "", "Backend base URL (overrides backend.base_url)")
	flags.StringVar(&o.wsURL, "ws-url", "", "Push channel WebSocket URL (overrides channel.url)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&o.storage, "storage", "", "Credential database path (overrides storage.path)")

	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.AddCommand(newLoginCmd(o), newLogoutCmd(o), newVersionCmd())
	return root
}

// load reads the config file and applies flag overrides.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.baseURL != "" {
		cfg.Backend.BaseURL = o.baseURL
	}
	if o.wsURL != "" {
		cfg.Channel.URL = o.wsURL
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.storage != "" {
		cfg.Storage.Path = o.storage
	}
	return cfg, nil
}

// env is everything a command needs, opened from the config.
type env struct {
	cfg      *config.Config
	log      *slog.Logger
	api      *client.HTTPClient
	store    *credential.Store
	sessions *session.Provider
	closers  []io.Closer
}

func (o *options) open(logOut io.Writer) (*env, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}

	log, logCloser, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Output: logOut,
	})
	if err != nil {
		return nil, err
	}

	store, err := credential.Open(cfg.Storage.Path)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	api := client.NewHTTPClient(cfg.Backend.BaseURL, client.Paths{
		Profile: cfg.Backend.ProfilePath,
		Logout:  cfg.Backend.LogoutPath,
		Item:    cfg.Backend.ItemPath,
	}, cfg.Backend.Timeout)

	return &env{
		cfg:      cfg,
		log:      log,
		api:      api,
		store:    store,
		sessions: session.NewProvider(store, api, log),
		closers:  []io.Closer{store, logCloser},
	}, nil
}

func (e *env) Close() {
	for _, c := range e.closers {
		_ = c.Close()
	}
}

func (o *options) runShell(cmd *cobra.Command) error {
	e, err := o.open(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	channel := client.NewChannel(client.ChannelConfig{
		URL:            e.cfg.Channel.URL,
		BroadcastTopic: e.cfg.Channel.BroadcastTopic,
		PrivateTopic:   e.cfg.Channel.PrivateTopic,
		ReconnectDelay: e.cfg.Channel.ReconnectDelay,
		Logger:         e.log,
	})
	defer channel.Disconnect()

	m := app.New(app.Deps{
		Sessions:  e.sessions,
		Channel:   channel,
		Items:     e.api,
		Logger:    e.log,
		AvatarURL: e.cfg.AvatarURL,
	})
	e.log.Info("starting shell", "backend", e.cfg.Backend.BaseURL, "channel", e.cfg.Channel.URL)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}
