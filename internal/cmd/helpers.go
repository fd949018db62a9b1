package cmd

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/adamancini/profup/internal/config"
	"github.com/adamancini/profup/internal/identity"
	"github.com/adamancini/profup/internal/output"
	"github.com/adamancini/profup/internal/tool"
	"github.com/adamancini/profup/internal/update"
)

// identityFileName is the identity store's file name inside the tool home.
const identityFileName = "identity.toml"

// env is everything a command needs, resolved from flags and config.
type env struct {
	cfg        *config.Config
	tool       *tool.Tool
	identities *identity.FileStore
	queries    update.QueryClient
	downloads  update.Downloader
	logger     *log.Logger
	out        *output.Writer
}

// newLogger returns the CLI logger honoring --verbose and --quiet.
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "profup",
	})
	switch {
	case verbose:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// loadEnv finds and loads the config and wires the update client.
func loadEnv(cmd *cobra.Command) (*env, error) {
	logger := newLogger(cmd.ErrOrStderr())

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	path, err := config.FindConfig(configPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Debug("using config", "path", path)
	} else {
		logger.Debug("no config file found, using defaults")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	t, err := tool.New(cfg.Tool)
	if err != nil {
		return nil, err
	}

	idPath := cfg.Identity.File
	if idPath == "" {
		idPath = filepath.Join(t.Home(), identityFileName)
	}
	ids := identity.NewFileStore(idPath)

	timeout, err := cfg.Service.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	// The timeout bounds the wait for response headers only; an archive
	// download may legitimately take longer.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	requestor, err := update.NewRequestor(cfg.Service.BaseURL,
		update.WithHTTPClient(&http.Client{Transport: transport}),
		update.WithUserAgent(fmt.Sprintf("%s/%s", cfg.Service.UserAgent, profupVersion)),
		update.WithRequestorLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	client := update.NewClient(requestor, update.NewParamBuilder(t, ids), update.WithLogger(logger))

	return &env{
		cfg:        cfg,
		tool:       t,
		identities: ids,
		queries:    client,
		downloads:  client,
		logger:     logger,
		out:        output.NewWriter(cmd.OutOrStdout(), format),
	}, nil
}

// say prints a human-facing line unless --quiet is set or output is
// structured.
func (e *env) say(w io.Writer, format string, args ...any) {
	if quiet || !e.out.IsText() {
		return
	}
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
