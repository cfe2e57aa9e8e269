package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/mfenderov/pdfvault/internal/config"
	"github.com/mfenderov/pdfvault/internal/elasticsearch"
	"github.com/mfenderov/pdfvault/internal/pdfx"
	"github.com/mfenderov/pdfvault/internal/pipeline"
	"github.com/mfenderov/pdfvault/internal/query"
	"github.com/mfenderov/pdfvault/internal/storage"
	"github.com/mfenderov/pdfvault/internal/store"
	"github.com/mfenderov/pdfvault/internal/store/sqlstore"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// openStore connects the configured record store and prepares its schema.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	slog.Debug("opening store", "driver", cfg.Store.Driver)

	switch cfg.Store.Driver {
	case "sqlite", "":
		return sqlstore.Open(ctx, sqlstore.Config{Dialect: sqlstore.SQLite, DSN: cfg.Store.DSN})
	case "postgres":
		return sqlstore.Open(ctx, sqlstore.Config{
			Dialect:  sqlstore.Postgres,
			DSN:      cfg.Store.DSN,
			MaxConns: cfg.Store.MaxConns,
		})
	case "elasticsearch":
		es, err := elasticsearch.New(elasticsearch.Config{
			Addresses: cfg.Elasticsearch.Addresses,
			Index:     cfg.Elasticsearch.Index,
			Username:  cfg.Elasticsearch.Username,
			Password:  cfg.Elasticsearch.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create ES client: %w", err)
		}
		if err := es.CreateIndex(ctx); err != nil {
			return nil, err
		}
		return es, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (want sqlite, postgres or elasticsearch)", cfg.Store.Driver)
	}
}

// openArchive returns nil when the archive is disabled.
func openArchive(ctx context.Context, cfg config.Config) (*storage.Client, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}

	client, err := storage.New(storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Bucket:          cfg.Storage.Bucket,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		UseSSL:          cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	slog.Info("upload archive enabled", "bucket", client.Bucket())
	return client, nil
}

func newPipeline(cfg config.Config, st store.Store, archive *storage.Client) *pipeline.Pipeline {
	var opts []pipeline.Option
	if cfg.PDF.Validate {
		opts = append(opts, pipeline.WithValidator(pdfx.Validate))
	}
	if archive != nil {
		opts = append(opts, pipeline.WithArchiver(archive))
	}
	return pipeline.New(st, opts...)
}

// withQueries opens the store, runs fn against a query service and closes the store.
func withQueries(ctx context.Context, fn func(*query.Service) error) error {
	st, err := openStore(ctx, GetConfig())
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(query.New(st))
}
