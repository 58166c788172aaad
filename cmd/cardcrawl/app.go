package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/nao1215/cardcrawl/internal/config"
	"github.com/nao1215/cardcrawl/internal/crawler"
	"github.com/nao1215/cardcrawl/internal/database"
	"github.com/nao1215/cardcrawl/internal/log"
	"github.com/nao1215/cardcrawl/internal/model"
	"github.com/nao1215/cardcrawl/internal/render"
	"github.com/nao1215/cardcrawl/internal/report"
	"github.com/nao1215/cardcrawl/internal/storage"
	"github.com/spf13/cobra"
)

// addConfigFlag registers --config.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cardcrawl in current or home directory)")
}

// addSiteFlags registers the flags that control how pages are fetched.
func addSiteFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("listing-url", config.DefaultListingURL, "Listing URL template containing {page}")
	f.String("detail-url", config.DefaultDetailURL, "Detail URL template containing {id}")
	f.String("renderer", config.RendererBrowser, "Page renderer: browser or http")
	f.String("remote-browser", "", "DevTools websocket URL of a running browser")
	f.String("browser-bin", "", "Chromium binary to launch")
	f.Bool("headful", false, "Show the browser window")
	f.Duration("nav-timeout", config.DefaultNavigationTimeout, "Timeout for each page navigation")
	f.Duration("ready-timeout", config.DefaultReadyTimeout, "Timeout for each ready-selector wait")
	f.Duration("settle", config.DefaultSettleDelay, "Delay after navigation for client-side rendering")
	f.Duration("delay", config.DefaultRequestDelay, "Pause between two detail page loads")
	f.String("proxy", "", "Proxy URL for all requests")
	f.String("user-agent", config.DefaultUserAgent, "User-Agent sent with every request")
}

// addStorageFlags registers the flags that locate stored results.
func addStorageFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntP("total-pages", "n", config.DefaultTotalPages, "Number of listing pages to sweep")
	f.String("store", config.StoreJSON, "Persistence backend: json or sqlite")
	f.String("data-dir", config.XDGDataDir(), "Directory holding the dataset and checkpoint")
	f.String("mode", config.ModeFull, "Dataset mode: full records or ids only")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	return getGlobalBool(cmd, "verbose")
}

// getGlobalBool reads a boolean flag from the command or, failing that,
// from the root's persistent flags.
func getGlobalBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// loadConfig builds the configuration for cmd.
// Precedence: defaults < config file < CARDCRAWL_* environment < flags
// that were set explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	if cmd.Flags().Lookup("config") != nil {
		cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
		if err != nil {
			return nil, err
		}
	}

	// A missing file is only an error when the user named it.
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := config.ApplyEnv(cfg, nil); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// applyFlags copies every flag the user set onto cfg. Flags a command does
// not register are skipped.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	var headful bool
	err := errors.Join(
		setFlag(cmd, "total-pages", f.GetInt, &cfg.TotalPages),
		setFlag(cmd, "listing-url", f.GetString, &cfg.ListingURL),
		setFlag(cmd, "detail-url", f.GetString, &cfg.DetailURL),
		setFlag(cmd, "renderer", f.GetString, &cfg.Renderer),
		setFlag(cmd, "remote-browser", f.GetString, &cfg.RemoteBrowser),
		setFlag(cmd, "browser-bin", f.GetString, &cfg.BrowserBin),
		setFlag(cmd, "nav-timeout", f.GetDuration, &cfg.NavigationTimeout),
		setFlag(cmd, "ready-timeout", f.GetDuration, &cfg.ReadyTimeout),
		setFlag(cmd, "settle", f.GetDuration, &cfg.SettleDelay),
		setFlag(cmd, "delay", f.GetDuration, &cfg.RequestDelay),
		setFlag(cmd, "proxy", f.GetString, &cfg.Proxy),
		setFlag(cmd, "user-agent", f.GetString, &cfg.UserAgent),
		setFlag(cmd, "store", f.GetString, &cfg.Store),
		setFlag(cmd, "data-dir", f.GetString, &cfg.DataDir),
		setFlag(cmd, "mode", f.GetString, &cfg.DatasetMode),
		setFlag(cmd, "headful", f.GetBool, &headful),
	)
	if err != nil {
		return err
	}
	if f.Changed("headful") {
		cfg.Headless = !headful
	}
	return nil
}

// setFlag stores the value of flag name in dst when the user set it.
func setFlag[T any](cmd *cobra.Command, name string, get func(string) (T, error), dst *T) error {
	if flag := cmd.Flags().Lookup(name); flag == nil || !flag.Changed {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// setupLogger creates a redacting structured logger on the command's
// stderr. Warn and above by default, Debug when verbose.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	w := cmd.ErrOrStderr()
	if getGlobalBool(cmd, "log-json") {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, stopping after the current card...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// newRenderer creates the renderer selected by cfg.
func newRenderer(cfg *config.Config, logger *slog.Logger) render.Renderer {
	if cfg.Renderer == config.RendererHTTP {
		return render.NewHTTPRenderer(
			render.WithHTTPUserAgent(cfg.UserAgent),
			render.WithHTTPProxy(cfg.Proxy),
			render.WithHTTPCookie(cfg.Cookie),
			render.WithHTTPHeaders(cfg.Headers),
			render.WithHTTPLogger(logger),
		)
	}

	if cfg.Cookie != "" || len(cfg.Headers) > 0 {
		logger.Warn("cookie and headers are only sent by the http renderer")
	}
	opts := []render.BrowserOption{
		render.WithHeadless(cfg.Headless),
		render.WithBrowserUserAgent(cfg.UserAgent),
		render.WithBrowserLogger(logger),
	}
	if cfg.BrowserBin != "" {
		opts = append(opts, render.WithBrowserBin(cfg.BrowserBin))
	}
	if cfg.RemoteBrowser != "" {
		opts = append(opts, render.WithRemoteBrowser(cfg.RemoteBrowser))
	}
	if cfg.Proxy != "" {
		opts = append(opts, render.WithBrowserProxy(cfg.Proxy))
	}
	return render.NewBrowserRenderer(opts...)
}

// newWalker creates the listing walker described by cfg.
func newWalker(cfg *config.Config, logger *slog.Logger) (*crawler.Walker, error) {
	pattern, err := regexp.Compile(cfg.DetailLinkPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidLinkPattern, err)
	}
	return crawler.NewWalker(cfg.ListingURL,
		crawler.WithLinkPattern(pattern),
		crawler.WithListingReadySelector(cfg.ListingReadySelector),
		crawler.WithWalkerTimeouts(cfg.NavigationTimeout, cfg.ReadyTimeout),
		crawler.WithWalkerSettle(cfg.SettleDelay),
		crawler.WithWalkerLogger(logger),
	), nil
}

// newResolver creates the detail resolver described by cfg.
func newResolver(cfg *config.Config, logger *slog.Logger) *crawler.Resolver {
	return crawler.NewResolver(cfg.DetailURL,
		crawler.WithDetailReadySelector(cfg.DetailReadySelector),
		crawler.WithResolverTimeouts(cfg.NavigationTimeout, cfg.ReadyTimeout),
		crawler.WithResolverSettle(cfg.SettleDelay),
		crawler.WithResolverLogger(logger),
	)
}

// stores bundles the checkpoint and dataset of one backend.
type stores struct {
	checkpoint storage.CheckpointStore
	dataset    storage.DatasetStore

	// location is the directory or database file holding the results.
	location string

	// db is set for the sqlite backend.
	db *database.CardDB
}

// Close releases the backend.
func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// openStores opens the backend selected by cfg.
func openStores(cfg *config.Config, logger *slog.Logger) (*stores, error) {
	mode := model.Mode(cfg.DatasetMode)

	if cfg.Store == config.StoreSQLite {
		db, err := database.Open(cfg.DatabasePath(), database.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		logger.Debug("database opened", "path", db.Path())
		return &stores{
			checkpoint: db.Checkpoint(),
			dataset:    db.Dataset(mode),
			location:   db.Path(),
			db:         db,
		}, nil
	}

	return &stores{
		checkpoint: storage.NewFileCheckpoint(cfg.CheckpointPath(), logger),
		dataset: storage.NewJSONDataset(cfg.DatasetPath(),
			storage.WithMode(mode),
			storage.WithDatasetLogger(logger),
		),
		location: cfg.DataDir,
	}, nil
}

// loadSummary reads both stores and aggregates them.
func loadSummary(ctx context.Context, cfg *config.Config, st *stores) (*report.Summary, error) {
	checkpoint, err := st.checkpoint.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	dataset, err := st.dataset.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return report.NewSummary(dataset, checkpoint, cfg.TotalPages, cfg.Store, st.location, time.Now()), nil
}
