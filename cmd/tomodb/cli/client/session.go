package client

import (
	"context"
	"fmt"

	"github.com/mwantia/tomodb/internal/agent"
	config "github.com/mwantia/tomodb/internal/config/server"
	"github.com/mwantia/tomodb/pkg/catalog"
	"github.com/mwantia/tomodb/pkg/db/store"
	"github.com/mwantia/tomodb/pkg/log"
)

// session is the local catalog a command works on.
type session struct {
	cfg     *config.BaseServerConfig
	log     log.LoggerService
	store   *store.SQLiteStore
	catalog *catalog.Service
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := log.NewLoggerService("tomodb", cfg.Log)

	s, err := agent.OpenStore(ctx, cfg.Metadata)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:     cfg,
		log:     logger,
		store:   s,
		catalog: agent.NewCatalog(s, cfg.Catalog, logger.Named("catalog")),
	}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warn("Failed to close metadata store: %v", err)
	}
}
