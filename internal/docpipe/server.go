package docpipe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/docpipe/internal/docpipe/biz"
	"github.com/kart-io/docpipe/internal/docpipe/handler"
	"github.com/kart-io/docpipe/internal/docpipe/router"
	"github.com/kart-io/docpipe/internal/docpipe/store"
	"github.com/kart-io/docpipe/internal/pkg/notify"
	"github.com/kart-io/docpipe/pkg/component/milvus"
	"github.com/kart-io/docpipe/pkg/component/postgres"
	"github.com/kart-io/docpipe/pkg/component/storage"
	"github.com/kart-io/docpipe/pkg/infra/app"
	"github.com/kart-io/docpipe/pkg/infra/pool"
	"github.com/kart-io/docpipe/pkg/llm"

	// Register embedding providers.
	_ "github.com/kart-io/docpipe/pkg/llm/openai"

	cacheopts "github.com/kart-io/docpipe/pkg/options/cache"
	llmopts "github.com/kart-io/docpipe/pkg/options/llm"
	logopts "github.com/kart-io/docpipe/pkg/options/logger"
	milvusopts "github.com/kart-io/docpipe/pkg/options/milvus"
	postgresopts "github.com/kart-io/docpipe/pkg/options/postgres"
)

// Name is the name of the application.
const Name = "docpipe"

// Config contains application-related configurations.
type Config struct {
	HTTPAddr         string
	LogOptions       *logopts.Options
	PostgresOptions  *postgresopts.Options
	CacheOptions     *cacheopts.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	PipelineOptions  *Options
	ShutdownTimeout  time.Duration

	// redisClose is set during initialization when the embedding cache
	// holds a live redis connection.
	redisClose func()
}

// Server is the assembled document pipeline service.
type Server struct {
	addr            string
	engine          *gin.Engine
	factory         store.Factory
	sweeper         *biz.Sweeper
	index           *store.MilvusIndex
	redisClose      func()
	shutdownTimeout time.Duration
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Infow("Starting document pipeline service...",
		"service.name", Name, "service.version", app.GetVersion())

	if err := pool.InitGlobal(); err != nil {
		return nil, fmt.Errorf("failed to initialize worker pools: %w", err)
	}

	pgClient, err := postgres.New(cfg.PostgresOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	storageMgr := storage.NewManager()
	storageMgr.MustRegister("postgres-primary", pgClient)

	factory, err := store.NewFactoryWithClient(pgClient)
	if err != nil {
		_ = pgClient.Close()
		return nil, fmt.Errorf("failed to initialize postgres store: %w", err)
	}
	logger.Info("Store layer initialized")

	provider, err := cfg.newProvider(ctx)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}

	index, err := cfg.newMilvusIndex(ctx)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}

	notifier := cfg.newNotifier()

	pipeline := cfg.PipelineOptions
	processor := biz.NewProcessor(biz.ProcessorParams{
		Store: factory,
		Chunker: biz.NewChunker(&biz.ChunkerConfig{
			ChunkSize:    pipeline.ChunkSize,
			ChunkOverlap: pipeline.ChunkOverlap,
			MinChunkSize: pipeline.MinChunkSize,
		}),
		Embedder:  llm.NewBatchEmbedder(provider, nil),
		Extractor: biz.NewPlainTextExtractor(),
		Content:   biz.NewDirContentProvider(pipeline.DataDir),
		Runner:    biz.NewPoolRunner(),
		Notifier:  notifier,
		Index:     index,
		Config: &biz.ProcessorConfig{
			AutoProcess:        pipeline.AutoProcess,
			BatchSizeThreshold: pipeline.BatchSizeThreshold,
			ImmediateTypes:     pipeline.ImmediateTypes,
			BatchTypes:         pipeline.BatchTypes,
			MaxRetries:         pipeline.MaxRetries,
			RetryDelay:         pipeline.RetryDelay,
		},
	})
	sweeper := biz.NewSweeper(processor, pipeline.SweepInterval)

	searchService := biz.NewSearchService(factory, provider, index, &biz.SearchConfig{
		DefaultLimit:     pipeline.SearchLimit,
		DefaultThreshold: pipeline.SearchThreshold,
	})
	logger.Info("Business layer initialized")

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Register(engine,
		handler.NewSearchHandler(searchService),
		handler.NewDocumentHandler(processor, sweeper),
		handler.NewHealthHandler(storageMgr),
	)

	srv := &Server{
		addr:            cfg.HTTPAddr,
		engine:          engine,
		factory:         factory,
		sweeper:         sweeper,
		index:           index,
		redisClose:      cfg.redisClose,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	logger.Info("Document pipeline service is ready")
	return srv, nil
}

// newProvider creates the embedding provider and wraps it with the
// redis cache when the cache is enabled and reachable.
func (cfg *Config) newProvider(ctx context.Context) (llm.EmbeddingProvider, error) {
	provider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider, "model", cfg.EmbeddingOptions.Model)

	if cfg.CacheOptions == nil || !cfg.CacheOptions.Enabled || cfg.CacheOptions.Redis == nil {
		logger.Info("Embedding cache is disabled")
		return provider, nil
	}

	redisOpts := cfg.CacheOptions.Redis
	redisClient := goredis.NewClient(&goredis.Options{
		Addr:         fmt.Sprintf("%s:%d", redisOpts.Host, redisOpts.Port),
		Password:     redisOpts.Password,
		DB:           redisOpts.Database,
		MaxRetries:   redisOpts.MaxRetries,
		PoolSize:     redisOpts.PoolSize,
		MinIdleConns: redisOpts.MinIdleConns,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warnw("failed to connect to redis, embedding cache disabled", "error", err.Error())
		_ = redisClient.Close()
		return provider, nil
	}

	cfg.redisClose = func() { _ = redisClient.Close() }
	logger.Infow("Embedding cache initialized",
		"host", redisOpts.Host, "port", redisOpts.Port, "ttl", cfg.CacheOptions.TTL)

	return llm.NewCachedEmbeddingProvider(provider, redisClient, &llm.EmbeddingCacheConfig{
		Enabled:   true,
		TTL:       cfg.CacheOptions.TTL,
		KeyPrefix: cfg.CacheOptions.KeyPrefix,
	}), nil
}

// newMilvusIndex connects the optional vector mirror.
func (cfg *Config) newMilvusIndex(ctx context.Context) (*store.MilvusIndex, error) {
	collection := cfg.PipelineOptions.MilvusCollection
	if collection == "" {
		return nil, nil
	}

	client, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}

	index := store.NewMilvusIndex(client, collection)
	if err := index.EnsureCollection(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("failed to prepare milvus collection: %w", err)
	}

	logger.Infow("Milvus mirror index initialized", "collection", collection)
	return index, nil
}

func (cfg *Config) newNotifier() notify.Notifier {
	pipeline := cfg.PipelineOptions
	if pipeline.SMTPHost == "" {
		return notify.NewLogNotifier()
	}

	notifier, err := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host: pipeline.SMTPHost,
		Port: pipeline.SMTPPort,
		From: pipeline.SMTPFrom,
		To:   pipeline.SMTPTo,
	})
	if err != nil {
		logger.Warnw("invalid smtp configuration, falling back to log notifications", "error", err)
		return notify.NewLogNotifier()
	}
	logger.Infow("SMTP notifications enabled", "host", pipeline.SMTPHost)
	return notifier
}

// Run starts the HTTP server and the batch sweep loop, then blocks
// until the context is cancelled and shutdown completes.
func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.sweeper.Run(runCtx)

	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.cleanup()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("http server shutdown failed", "error", err)
	}

	s.cleanup()
	logger.Info("Shutdown complete")
	return nil
}

func (s *Server) cleanup() {
	if s.index != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.index.Close(ctx); err != nil {
			logger.Warnw("failed to close milvus index", "error", err)
		}
		cancel()
	}
	if s.redisClose != nil {
		s.redisClose()
	}
	if err := s.factory.Close(); err != nil {
		logger.Warnw("failed to close store", "error", err)
	}
	if err := pool.CloseGlobal(); err != nil {
		logger.Warnw("failed to close worker pools", "error", err)
	}
	_ = logger.Flush()
}
