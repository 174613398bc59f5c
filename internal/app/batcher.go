package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/bacon-oracle/internal/config"
	"github.com/samvad-hq/bacon-oracle/internal/logger"
	"github.com/samvad-hq/bacon-oracle/internal/lookup"
	"github.com/samvad-hq/bacon-oracle/internal/storage"
	"github.com/samvad-hq/bacon-oracle/pkg/httpclient"
	"github.com/samvad-hq/bacon-oracle/pkg/oracle"
	"github.com/samvad-hq/bacon-oracle/pkg/publishers"
	"github.com/samvad-hq/bacon-oracle/pkg/queries"
)

// Batcher is the lookup runtime. It owns the connector, the history store and
// the publisher fan-out, and runs the configured query batch once or on an interval.
type Batcher struct {
	cfg      *config.Config
	queryReg *queries.Registry
	fanout   *publishers.Fanout
	lookups  *lookup.Service
	interval time.Duration
	log      logger.Logger
	store    storage.Store
}

// NewBatcher builds the runtime from config. A nil transport uses the resty HTTP client.
// An empty queries file leaves the batch empty; Lookup still works.
func NewBatcher(ctx context.Context, cfg *config.Config, log logger.Logger, transport oracle.Transport) (*Batcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	var queryReg *queries.Registry
	if cfg.QueriesFile != "" {
		reg, err := queries.LoadRegistry(cfg.QueriesFile)
		if err != nil {
			return nil, fmt.Errorf("load queries registry: %w", err)
		}
		queryReg = reg
		log.InfoObj("queries registry loaded", "queries_meta", map[string]any{
			"count": len(reg.All()),
			"file":  cfg.QueriesFile,
		})
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := OpenHistory(cfg)
	if err != nil {
		_ = fanout.Close(ctx)
		return nil, err
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"history_ttl_seconds":      int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
	})

	if transport == nil {
		headers := map[string]string{"User-Agent": cfg.UserAgent}
		transport = httpclient.NewBodyTransport(httpclient.NewRestyClient(cfg.HTTPTimeout), headers)
	}
	connector := oracle.NewConnector(cfg.APIKey, transport,
		oracle.WithBaseURL(cfg.BaseURL),
		oracle.WithLogger(log),
	)

	return &Batcher{
		cfg:      cfg,
		queryReg: queryReg,
		fanout:   fanout,
		lookups:  lookup.NewService(connector, fanout, log, store, cfg.AnchorName),
		interval: cfg.BatchInterval,
		log:      log,
		store:    store,
	}, nil
}

// OpenHistory opens the configured history store.
func OpenHistory(cfg *config.Config) (storage.Store, error) {
	opts := storage.Options{
		HistoryTTL:      cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, opts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

// buildFanout returns an empty fan-out when no publishers file is configured.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Lookup resolves a single pair of names. An empty side falls back to the anchor.
func (b *Batcher) Lookup(ctx context.Context, from, to string) (oracle.Response, error) {
	if b == nil || b.lookups == nil {
		return nil, fmt.Errorf("batcher is not initialized")
	}
	q := oracle.NewQueryWithAnchor(b.lookups.Anchor())
	q.SetFrom(from)
	q.SetTo(to)
	return b.lookups.Lookup(ctx, "", q)
}

// History returns the most recent lookups, newest first.
func (b *Batcher) History(limit int) ([]storage.Entry, error) {
	if b == nil || b.store == nil {
		return nil, fmt.Errorf("batcher is not initialized")
	}
	return b.store.Recent(limit)
}

// Run executes the query batch once, then on every interval tick until ctx is
// cancelled. With a zero interval it returns the batch error after one pass.
func (b *Batcher) Run(ctx context.Context) error {
	if b == nil || b.lookups == nil {
		return fmt.Errorf("batcher is not initialized")
	}
	if b.queryReg == nil {
		return fmt.Errorf("no queries file configured")
	}
	entries := b.queryReg.All()

	b.log.InfoObj("batch loop starting", "batch_state", map[string]any{
		"queries_count":    len(entries),
		"publishers_count": b.fanout.Size(),
		"batch_interval":   b.interval.String(),
	})

	err := b.runOnce(ctx, entries)
	if b.interval <= 0 {
		return err
	}
	if err != nil {
		b.log.ErrorObj("initial batch failed", "error", err.Error())
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.InfoObj("batch loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := b.runOnce(ctx, entries); err != nil {
				b.log.ErrorObj("scheduled batch failed", "error", err.Error())
			}
		}
	}
}

// runOnce performs a single pass over every query.
func (b *Batcher) runOnce(ctx context.Context, entries []queries.Entry) error {
	start := time.Now()
	b.log.InfoObj("batch started", "batch_meta", map[string]any{
		"queries_count": len(entries),
		"started_at":    start.UTC(),
	})
	if err := b.lookups.Run(ctx, entries); err != nil {
		return err
	}
	b.log.InfoObj("batch completed", "batch_meta", map[string]any{
		"queries_count": len(entries),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

// Close releases the publishers and the history store.
func (b *Batcher) Close(ctx context.Context) error {
	if b == nil {
		return nil
	}
	var errs []error
	if b.fanout != nil {
		if err := b.fanout.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close publishers: %w", err))
		}
	}
	if b.store != nil {
		if err := b.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
