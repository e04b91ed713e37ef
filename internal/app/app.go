package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/cart"
	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/dummyjson"
	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/products"
	"github.com/five82/shelf/internal/session"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/ui"
	"github.com/five82/shelf/internal/wishlist"
)

// Options configure the shelf application.
type Options struct {
	ConfigPath   string
	PrefsPath    string        // empty uses default ~/.config/shelf/prefs.toml
	LogLevel     string        // overrides log_level from the config file
	Development  bool          // human-readable log lines
	RefreshEvery time.Duration // zero uses default
	Reset        bool          // wipe persisted state before loading
}

// Services holds every long-lived component. It is built once per process
// and handed to the UI by reference.
type Services struct {
	KV       *kv.Store
	Client   *dummyjson.Client
	Session  *session.Manager
	Cart     *cart.Ledger
	Wishlist *wishlist.Set
	Catalog  *catalog.Reconciler
	Products *products.Gateway
	State    *state.Store

	closer io.Closer
}

// Close releases the storage backend.
func (s *Services) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// BuildOptions tune Build.
type BuildOptions struct {
	Reset bool
}

// Build constructs and loads every component from cfg. Persisted state is
// read synchronously, so the cart, wishlist and session are loaded before
// Build returns.
func Build(cfg config.Config, log zerolog.Logger, opts BuildOptions) (*Services, error) {
	backend, closer, err := kv.Open(kv.Options{
		Backend:     cfg.Store.Backend,
		Dir:         cfg.StoreDir(),
		RedisAddr:   cfg.Store.RedisAddr,
		RedisPrefix: cfg.Store.RedisPrefix,
		SQLitePath:  cfg.Store.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	store := kv.New(backend, log.With().Str("component", "kv").Logger())
	if !store.Available() {
		log.Warn().Str("backend", cfg.Store.Backend).Msg("persistent store unavailable; changes will not survive a restart")
	}
	if opts.Reset {
		if err := store.Clear(); err != nil {
			_ = closer.Close()
			return nil, fmt.Errorf("reset store: %w", err)
		}
		log.Info().Msg("persisted state cleared")
	}

	client, err := dummyjson.NewClient(cfg.APIBaseURL, dummyjson.WithRateLimit(cfg.RequestsPerSecond))
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	sess := session.NewManager(store, client, log.With().Str("component", "session").Logger(), session.Options{
		SessionMinutes: cfg.SessionMinutes,
	})
	restored := sess.Restore()
	log.Info().Str("session", restored.String()).Msg("session restored")

	ledger := cart.New(store, log.With().Str("component", "cart").Logger())
	ledger.Load()
	wish := wishlist.New(store, log.With().Str("component", "wishlist").Logger())
	wish.Load()

	local := catalog.NewLocalState(store, log.With().Str("component", "catalog").Logger())
	reconciler := catalog.NewReconciler(client, local, sess, log.With().Str("component", "catalog").Logger(), catalog.Options{
		FetchLimit: cfg.FetchLimit,
	})

	gatewayOpts := []products.Option{}
	if cfg.RemoteEcho {
		gatewayOpts = append(gatewayOpts, products.WithRemoteEcho(client))
	}
	gateway := products.NewGateway(reconciler, sess, log.With().Str("component", "products").Logger(), gatewayOpts...)

	return &Services{
		KV:       store,
		Client:   client,
		Session:  sess,
		Cart:     ledger,
		Wishlist: wish,
		Catalog:  reconciler,
		Products: gateway,
		State:    &state.Store{},
		closer:   closer,
	}, nil
}

// Run boots the shelf TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	level := cfg.LogLevel
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	log, logCloser, err := logging.New(logging.Options{
		Path:        cfg.LogPath(),
		Level:       level,
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	svc, err := Build(cfg, log, BuildOptions{Reset: opts.Reset})
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	interval := defaultRefreshInterval
	if opts.RefreshEvery > 0 {
		interval = opts.RefreshEvery
	}

	// Populate the store before the UI starts.
	query := catalog.NewQuery(userPrefs.PageSize).WithSort(catalog.ParseSort(userPrefs.Sort))
	if res := publish(ctx, svc.State, svc.Catalog, svc.Catalog.Load(ctx, query), log); !res.Success {
		log.Warn().Str("reason", res.Message).Msg("initial catalog load failed")
	}

	StartRefresher(ctx, svc.State, svc.Catalog, interval, log)

	go func() { _, _ = svc.Session.SyncUsers(ctx) }()

	log.Info().Str("api", cfg.APIBaseURL).Str("backend", cfg.Store.Backend).Msg("shelf started")

	return ui.Run(ui.Options{
		Context:   ctx,
		State:     svc.State,
		Catalog:   svc.Catalog,
		Session:   svc.Session,
		Cart:      svc.Cart,
		Wishlist:  svc.Wishlist,
		Products:  svc.Products,
		LogPath:   cfg.LogPath(),
		Query:     query,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	})
}
