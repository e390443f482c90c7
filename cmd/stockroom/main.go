package main

import (
	"context"
	"fmt"
	"log"

	"stockroom/internal/config"
	"stockroom/internal/http/handlers"
	applog "stockroom/internal/log"
	"stockroom/internal/repos"
	"stockroom/internal/storage"
)

func main() {
	applog.SetService("stockroom")
	cfg := config.Load()

	if f := applog.Setup(cfg.LogFile); f != nil {
		defer f.Close()
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN, cfg.SeedDemo)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	store, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	app := handlers.NewApp(cfg, handlers.NewDeps(db, cfg, store))
	log.Printf("[http] stockroom API on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("[http] %v", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	switch cfg.UploadBackend {
	case "gcs":
		s, err := storage.NewGCSStore(ctx, storage.GCSConfig{
			Bucket:        cfg.GCSBucket,
			Prefix:        cfg.GCSPrefix,
			Endpoint:      cfg.GCSEndpoint,
			PublicBaseURL: cfg.GCSPublicBaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[storage] uploads -> gs://%s/%s", cfg.GCSBucket, cfg.GCSPrefix)
		return s, func() { _ = s.Close() }, nil
	case "local":
		s, err := storage.NewLocalStore(cfg.UploadDir, "/uploads")
		if err != nil {
			return nil, nil, err
		}
		log.Printf("[storage] /uploads -> %s", cfg.UploadDir)
		return s, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported UPLOAD_BACKEND %q", cfg.UploadBackend)
	}
}
