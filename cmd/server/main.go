package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"streamz/internal/application/auth"
	"streamz/internal/application/catalog"
	"streamz/internal/application/streaming"
	"streamz/internal/config"
	"streamz/internal/infrastructure/objectstore"
	"streamz/internal/infrastructure/postgres"
	httptransport "streamz/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := log.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("metadata store init failed: %v", err)
	}
	defer store.Close()

	content, err := newContentStore(ctx, cfg)
	if err != nil {
		log.Fatalf("object store init failed: %v", err)
	}

	lookupTimeout := time.Duration(cfg.LookupTimeoutSeconds) * time.Second
	relay := streaming.NewService(store, content, logger, lookupTimeout)
	catalogService := catalog.NewService(store, store, store, content, logger, cfg.S3PublicURL)
	authService := auth.NewService(store, time.Duration(cfg.SessionTTLHours)*time.Hour)

	handler := httptransport.NewHandler(relay, catalogService, authService, logger)
	router := httptransport.NewRouter(handler, cfg.AdminToken, logger)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Range"},
		ExposedHeaders: []string{"Content-Length", "Content-Range", "Accept-Ranges"},
		MaxAge:         86400,
	})

	server := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: c.Handler(router),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("Server started on %s", cfg.ServerAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	logger.Printf("Server stopped")
}

// newContentStore selects the object storage backend. S3 is the production
// path; the filesystem store exists for local development.
func newContentStore(ctx context.Context, cfg config.Config) (contentStore, error) {
	switch cfg.ContentStore {
	case "fs":
		return objectstore.NewFSStore(cfg.VideosDir)
	default:
		return objectstore.NewS3Store(ctx, objectstore.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	}
}

// contentStore is the union of the relay's read port and the catalog's write
// port; both storage adapters satisfy it.
type contentStore interface {
	streaming.ObjectStore
	catalog.ObjectWriter
}
