package cli

import (
	"context"
	"fmt"

	"github.com/defm/console/internal/core/ports"
	"github.com/defm/console/internal/infrastructure/config"
	"github.com/defm/console/internal/infrastructure/db/memory"
	"github.com/defm/console/internal/infrastructure/db/mongo"
	"github.com/defm/console/internal/infrastructure/db/redis"
	"github.com/defm/console/internal/infrastructure/db/sqlite"
)

// storeOpener is replaced in tests.
var storeOpener = openStore

// openStore connects the token store selected by DEFM_STORE.
func openStore(ctx context.Context, cfg *config.Config) (ports.KeyValueStore, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return memory.NewStore(), nil
	case config.StoreSQLite:
		return sqlite.Open(ctx, cfg.Store.SQLitePath, cfg.Store.Profile)
	case config.StoreRedis:
		return redis.Open(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Profile:  cfg.Store.Profile,
			TTL:      cfg.Store.TTL,
		})
	case config.StoreMongo:
		return mongo.Open(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Profile:  cfg.Store.Profile,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
