package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Archer110/nexus/internal/cache"
	"github.com/Archer110/nexus/internal/config"
	mongorepo "github.com/Archer110/nexus/internal/repository/mongo"
	"github.com/Archer110/nexus/internal/repository/postgres"
	"github.com/Archer110/nexus/internal/seed"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

func openPostgres(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*sql.DB, error) {
	db, err := postgres.Open(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(db, cfg.Postgres.MigrationsDirPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("database migrations completed")
	return db, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return mongorepo.Connect(connectCtx, cfg.MongoURI, cfg.MongoDBName)
}

func disconnect(db *mongo.Database, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(ctx); err != nil {
		log.WithError(err).Warn("failed to disconnect from MongoDB")
	}
}

func migrate(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) error {
	db, err := openPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	mdb, err := openMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnect(mdb, log)

	if err := mongorepo.NewCatalogRepository(mdb).CreateIndexes(ctx); err != nil {
		return err
	}
	if err := mongorepo.NewCartRepository(mdb).CreateIndexes(ctx, cfg.CartTTL); err != nil {
		return err
	}
	log.Info("indexes created")
	return nil
}

func seedProducts(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, n int) error {
	db, err := openPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	mdb, err := openMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnect(mdb, log)

	seeder := seed.NewSeeder(time.Now().UnixNano(), cfg.Currency, log)
	_, err = seeder.SeedProducts(ctx, mongorepo.NewCatalogRepository(mdb), postgres.NewInventoryRepository(db), n)
	return err
}

func seedOrders(ctx context.Context, cfg *config.Config, log logrus.FieldLogger, n int) error {
	db, err := openPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	mdb, err := openMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnect(mdb, log)

	seeder := seed.NewSeeder(time.Now().UnixNano(), cfg.Currency, log)
	_, err = seeder.SeedOrders(ctx, mongorepo.NewCatalogRepository(mdb), postgres.NewOrderRepository(db), n)
	return err
}

func cleanCache(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) error {
	client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer client.Close()

	deleted, err := cache.NewRedisCache(client, cfg.CartCacheTTL).FlushCarts(ctx)
	if err != nil {
		return fmt.Errorf("flush carts: %w", err)
	}
	log.WithField("deleted", deleted).Info("cart cache cleared")
	return nil
}
