package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookcatalog/internal/config"
)

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: openlibrary, googlebooks" required:""`
}

func (i *InvalidateCacheCmd) Run(ctx context.Context) error {
	slog.Info("Invalidating cache", "source", i.Source, "database", config.CacheDBPath)

	tableName, err := TableForSource(i.Source)
	if err != nil {
		return err
	}

	cacheInstance, err := Open(config.CacheDBPath, config.CacheTTL)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = cacheInstance.Close() }()

	rowsDeleted, err := cacheInstance.InvalidateSource(ctx, tableName)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	slog.Info("Cache invalidated", "source", i.Source, "rows_deleted", rowsDeleted)
	return nil
}
