package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/config"
	"github.com/xtding233/idle-venues/internal/engine"
	"github.com/xtding233/idle-venues/internal/gacha"
	"github.com/xtding233/idle-venues/internal/httpapi"
	"github.com/xtding233/idle-venues/internal/logger"
	"github.com/xtding233/idle-venues/internal/metrics"
	"github.com/xtding233/idle-venues/internal/state"
	"github.com/xtding233/idle-venues/internal/store"
	"github.com/xtding233/idle-venues/internal/ticker"
)

func main() {
	cfgPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "idle-server: %+v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	loader, cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	saveID, saved, err := resume(ctx, st, cfg.Store.SaveID)
	if err != nil {
		return err
	}

	met := metrics.New(metrics.DefaultNamespace)
	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithMetrics(met),
		engine.WithStartingGems(cfg.Economy.StartingGems),
	}
	if cfg.RNG.Seed != 0 {
		opts = append(opts, engine.WithRNG(gacha.NewSeededRNG(cfg.RNG.Seed)))
	}
	eng, err := engine.New(cat, saved, opts...)
	if err != nil {
		return errors.Wrapf(err, "start save %s", saveID)
	}
	log.Info("game loaded", "save_id", saveID, "level", eng.Snapshot().Level, "catalog", cat.Version)

	events, unsubscribe := eng.Subscribe(64)
	defer unsubscribe()
	go logEvents(log.Named("events"), events)

	if loader != nil && cfg.Catalog.Watch {
		w, err := watchCatalog(loader, eng, log)
		if err != nil {
			return err
		}
		defer w.Stop()
	}

	// Listeners are bound before the ticker starts so a bad address cannot skip the
	// final save.
	httpLis, grpcLis, err := listen(cfg.Server)
	if err != nil {
		return err
	}
	var (
		gsrv *grpc.Server
		hs   *health.Server
	)

	save := func(ctx context.Context, s *state.GameState) error { return st.Save(ctx, saveID, s) }
	tk, err := ticker.New(eng, ticker.Config{Interval: cfg.Tick.Interval, SaveEvery: cfg.Tick.SaveEvery}, save, log)
	if err != nil {
		_ = httpLis.Close()
		if grpcLis != nil {
			_ = grpcLis.Close()
		}
		return err
	}
	tk.Start()

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.NewHandler(eng, log), met.Registry())
	srv := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 2)
	go func() {
		log.Info("http listening", "addr", cfg.Server.HTTPAddr)
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "http server")
		}
	}()

	if grpcLis != nil {
		gsrv = grpc.NewServer()
		hs = health.NewServer()
		healthpb.RegisterHealthServer(gsrv, hs)
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		go func() {
			log.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
			if err := gsrv.Serve(grpcLis); err != nil {
				errCh <- errors.Wrap(err, "grpc server")
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errCh:
		log.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if hs != nil {
		hs.Shutdown()
		gsrv.GracefulStop()
	}
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		log.Warn("http shutdown", "error", serr)
	}
	if serr := tk.Stop(shutdownCtx); serr != nil {
		log.Error("final save failed", "error", serr)
		return errors.CombineErrors(err, serr)
	}
	log.Info("saved", "save_id", saveID, "dropped_events", eng.DroppedEvents())
	return err
}

// listen binds the HTTP listener and, when configured, the gRPC one. On error no
// listener is left open.
func listen(cfg config.ServerConfig) (httpLis, grpcLis net.Listener, err error) {
	httpLis, err = net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listen %s", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr == "" {
		return httpLis, nil, nil
	}
	grpcLis, err = net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		_ = httpLis.Close()
		return nil, nil, errors.Wrapf(err, "listen %s", cfg.GRPCAddr)
	}
	return httpLis, grpcLis, nil
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Loader, *catalog.Catalog, error) {
	if cfg.Dir == "" {
		return nil, catalog.Default(), nil
	}
	l := catalog.NewLoader(cfg.Dir)
	cat, err := l.Load()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "load catalog from %s", cfg.Dir)
	}
	return l, cat, nil
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	if cfg.Path == "" {
		return store.NewMemory(), nil
	}
	return store.Open(cfg.Path)
}

// resume picks the save to continue: the configured id, else the most recently
// updated save, else a fresh id. saved is nil when the game starts new.
func resume(ctx context.Context, st store.Store, id string) (string, *state.GameState, error) {
	if id == "" {
		infos, err := st.List(ctx)
		if err != nil {
			return "", nil, err
		}
		if len(infos) == 0 {
			return store.NewID(), nil, nil
		}
		id = infos[0].ID
	}
	saved, err := st.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return id, nil, nil
	}
	if err != nil {
		return "", nil, errors.Wrapf(err, "load save %s", id)
	}
	return id, saved, nil
}

func watchCatalog(l *catalog.Loader, eng *engine.Engine, log logger.Logger) (*catalog.FileWatcher, error) {
	log = log.Named("catalog")
	w, err := catalog.NewFileWatcher(l.Dir(), 250*time.Millisecond,
		func(path string) {
			l.Invalidate()
			cat, err := l.Load()
			if err != nil {
				log.Warn("catalog reload failed", "path", path, "error", err)
				return
			}
			if err := eng.ReloadCatalog(cat); err != nil {
				log.Warn("catalog not applied", "path", path, "error", err)
			}
		},
		func(err error) { log.Error("catalog watcher", "error", err) },
	)
	if err != nil {
		return nil, errors.Wrapf(err, "watch %s", l.Dir())
	}
	w.Start()
	return w, nil
}

func logEvents(log logger.Logger, events <-chan engine.Event) {
	for ev := range events {
		switch ev.Kind {
		case engine.EventLevelUp:
			log.Info("level up", "level", ev.Level)
		default:
			log.Debug(string(ev.Kind), "character", ev.CharacterID, "venue", ev.VenueID)
		}
	}
}
