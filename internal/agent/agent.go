package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mwantia/fabric/pkg/container"
	"github.com/mwantia/tomodb/internal/api"
	config "github.com/mwantia/tomodb/internal/config/server"
	"github.com/mwantia/tomodb/pkg/catalog"
	"github.com/mwantia/tomodb/pkg/catalog/ids"
	"github.com/mwantia/tomodb/pkg/db/store"
	"github.com/mwantia/tomodb/pkg/draft"
	"github.com/mwantia/tomodb/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
)

type TomoDBAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	store   *store.SQLiteStore
	catalog *catalog.Service
	server  *http.Server

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

func NewAgent(cfg *config.BaseServerConfig) *TomoDBAgent {
	return &TomoDBAgent{
		cfg:        cfg,
		sc:         newServiceContainer(),
		log:        log.NewLoggerService("tomodb", cfg.Log),
		registerer: prometheus.DefaultRegisterer,
		gatherer:   prometheus.DefaultGatherer,
	}
}

func newServiceContainer() *container.ServiceContainer {
	sc := container.NewServiceContainer()
	sc.AddTagProcessor(log.NewLoggerTagProcessor())
	return sc
}

// ConnectStore opens the configured metadata store without touching its
// schema.
func ConnectStore(ctx context.Context, cfg config.MetadataServerConfig) (*store.SQLiteStore, error) {
	if cfg.Type != "" && cfg.Type != "sqlite" {
		return nil, fmt.Errorf("unsupported metadata store type %q", cfg.Type)
	}

	s, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:     cfg.SQLite.Path,
		LogLevel: store.ParseLogLevel(cfg.SQLite.LogLevel),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Connect(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect metadata store: %w", err)
	}
	return s, nil
}

// OpenStore opens and migrates the configured metadata store.
func OpenStore(ctx context.Context, cfg config.MetadataServerConfig) (*store.SQLiteStore, error) {
	s, err := ConnectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate metadata store: %w", err)
	}
	return s, nil
}

// NewCatalog builds the catalog service from configuration.
func NewCatalog(repo catalog.Repository, cfg config.CatalogServerConfig, logger log.LoggerService) *catalog.Service {
	return catalog.NewService(repo, catalog.Config{
		Pattern:       ids.NewPattern(cfg.IDPrefix, cfg.IDWidth),
		CreateRetries: cfg.CreateRetries,
	}, logger)
}

// agentServices is assembled by the container from its fabric tags.
type agentServices struct {
	Store      store.MetadataStore `fabric:"inject"`
	CatalogLog log.LoggerService   `fabric:"logger:catalog"`
	HTTPLog    log.LoggerService   `fabric:"logger:http"`
}

func (tda *TomoDBAgent) setupServices(ctx context.Context) (*agentServices, error) {
	errs := container.Errors{}

	tda.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](tda.sc,
		container.With[log.LoggerService](),
		container.WithInstance(tda.log)))

	if err := errs.Errors(); err != nil {
		return nil, err
	}

	tda.log.Debug("Opening metadata store at '%s'...", tda.cfg.Metadata.SQLite.Path)
	s, err := OpenStore(ctx, tda.cfg.Metadata)
	if err != nil {
		return nil, err
	}
	tda.store = s

	tda.log.Debug("Registering 'MetadataStore'...")
	errs.Add(container.Register[store.SQLiteStore](tda.sc,
		container.With[store.MetadataStore](),
		container.WithInstance(s)))
	errs.Add(container.Register[*agentServices](tda.sc))

	if err := errs.Errors(); err != nil {
		return nil, err
	}

	services, err := container.Resolve[*agentServices](ctx, tda.sc)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve agent services: %w", err)
	}

	tda.catalog = NewCatalog(services.Store, tda.cfg.Catalog, services.CatalogLog)
	return services, nil
}

func (tda *TomoDBAgent) setupServer(services *agentServices) error {
	readTimeout, err := time.ParseDuration(tda.cfg.HTTP.ReadTimeout)
	if err != nil {
		return fmt.Errorf("invalid http.read_timeout: %w", err)
	}
	writeTimeout, err := time.ParseDuration(tda.cfg.HTTP.WriteTimeout)
	if err != nil {
		return fmt.Errorf("invalid http.write_timeout: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)

	opts := api.Options{
		Catalog: tda.catalog,
		Drafts:  draft.NewStoreRepository(services.Store),
		Health:  services.Store,
		Logger:  services.HTTPLog,
	}
	if tda.cfg.HTTP.Metrics {
		opts.Metrics = api.NewMetrics(tda.registerer)
		opts.Gatherer = tda.gatherer
		tda.catalog.Allocator().OnFailure(opts.Metrics.ObserveAllocationFailure)
	}

	tda.server = &http.Server{
		Addr:         tda.cfg.HTTP.Address,
		Handler:      api.NewRouter(opts),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return nil
}

func (tda *TomoDBAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	tda.mutex.Lock()

	services, err := tda.setupServices(ctx)
	if err != nil {
		if tda.store != nil {
			tda.store.Close()
		}
		tda.mutex.Unlock()
		return err
	}
	if err := tda.setupServer(services); err != nil {
		tda.store.Close()
		tda.mutex.Unlock()
		return err
	}

	serveErr := make(chan error, 1)
	tda.wait.Add(1)
	go func() {
		defer tda.wait.Done()

		tda.log.Info("Serving catalog API on %s", tda.server.Addr)
		if err := tda.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()

	tda.mutex.Unlock()
	<-ctx.Done()

	timeout, err := time.ParseDuration(tda.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	tda.log.Info("Shutting down...")
	if err := tda.server.Shutdown(shutdown); err != nil {
		tda.log.Warn("HTTP server did not shut down cleanly: %v", err)
	}
	tda.wait.Wait()

	if err := tda.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}
	if err := tda.store.Close(); err != nil {
		tda.log.Warn("Failed to close metadata store: %v", err)
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server failed: %w", err)
	default:
		return nil
	}
}
