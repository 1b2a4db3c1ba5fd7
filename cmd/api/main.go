package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/curugbadak/pasar-desa/backend/internal/config"
	"github.com/curugbadak/pasar-desa/backend/internal/db"
	"github.com/curugbadak/pasar-desa/backend/internal/handler"
	"github.com/curugbadak/pasar-desa/backend/internal/migrate"
	"github.com/curugbadak/pasar-desa/backend/internal/model/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/model/persona"
	catalogRepo "github.com/curugbadak/pasar-desa/backend/internal/repository/catalog"
	"github.com/curugbadak/pasar-desa/backend/internal/service/ai"
	"github.com/curugbadak/pasar-desa/backend/internal/service/chat"
	"github.com/curugbadak/pasar-desa/backend/internal/storage/keyvalue"
	"github.com/curugbadak/pasar-desa/backend/internal/storage/memory"
	"github.com/curugbadak/pasar-desa/backend/internal/storage/sqlite"
)

type transcriptStore interface {
	chat.Recorder
	io.Closer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	if err := run(ctx); err != nil {
		stop()
		log.Fatal(err)
	}
}

// run wires the service and serves until ctx is done. Opened stores are
// closed before it returns.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	provider, closeCatalog, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer closeCatalog()

	transcripts, err := openTranscripts(ctx, cfg.Transcript)
	if err != nil {
		return fmt.Errorf("failed to open transcript store: %w", err)
	}
	defer func() {
		if err := transcripts.Close(); err != nil {
			log.Printf("warning: failed to close transcript store: %v", err)
		}
	}()

	completer, err := newCompleter(ctx, cfg.AI)
	if err != nil {
		log.Printf("warning: failed to initialize AI provider: %v", err)
	}
	if completer == nil {
		log.Println("no completion provider configured, every reply will be the fallback message")
	} else {
		log.Printf("AI provider %s initialized", cfg.AI.Provider)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	chatService := chat.NewService(chat.Options{
		Personas:      personaStore,
		Catalog:       provider,
		Completer:     completer,
		Recorder:      transcripts,
		HistoryWindow: cfg.Chat.HistoryWindow,
		Timeout:       cfg.Chat.CompletionTimeout,
	})

	router := handler.NewRouter(cfg.Server.AllowedOrigins, personaStore, provider, chatService)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Pasar Desa backend listening on %s", cfg.Server.Addr)
	if err := runServer(ctx, srv); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func openCatalog(ctx context.Context, cfg config.CatalogConfig) (catalog.Provider, func(), error) {
	if cfg.Backend != config.BackendPostgres {
		log.Println("using in-memory catalog")
		return catalog.NewMemoryProvider(catalog.SeedStores(), catalog.SeedProducts()), func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect catalog database: %w", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	repo := catalogRepo.NewPostgres(pool, log.Default())
	if cfg.Seed {
		if err := repo.Seed(ctx, catalog.SeedStores(), catalog.SeedProducts()); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("seed catalog: %w", err)
		}
	}
	log.Println("using postgres catalog")
	return repo, pool.Close, nil
}

func openTranscripts(ctx context.Context, cfg config.TranscriptConfig) (transcriptStore, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Printf("recording transcripts in redis at %s", cfg.RedisAddr)
		return keyvalue.NewTranscriptStore(rdb, cfg.TTL), nil
	case config.BackendSQLite:
		log.Printf("recording transcripts in sqlite at %s", cfg.SQLitePath)
		return sqlite.NewTranscriptStore(cfg.SQLitePath)
	default:
		log.Println("recording transcripts in memory")
		return memory.NewTranscriptStore(), nil
	}
}

func newCompleter(ctx context.Context, cfg config.AIConfig) (chat.Completer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		svc, err := ai.NewOpenAIService(cfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		svc, err := ai.NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
