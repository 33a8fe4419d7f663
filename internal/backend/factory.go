package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodwaste/internal/amqp"
	"foodwaste/internal/cache"
	"foodwaste/internal/chat"
	"foodwaste/internal/config"
	"foodwaste/internal/core"
	"foodwaste/internal/llm"
	"foodwaste/internal/log"
	"foodwaste/internal/metrics"
	"foodwaste/internal/services"
	"foodwaste/internal/storage"
	"foodwaste/internal/storage/memory"
	"foodwaste/internal/storage/postgres"
	"foodwaste/internal/storage/sqlite"
)

// Factory assembles a Backend from the application configuration.
type Factory struct {
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewFactory creates a new backend factory. m may be nil.
func NewFactory(logger *log.Logger, m *metrics.Metrics) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{
		logger:  logger.WithComponent(log.ComponentBackend),
		metrics: m,
	}
}

// CreateBackend opens the configured store and wires the event publisher
// and chat resolver around it. A broker that cannot be reached only
// disables event publishing.
func (f *Factory) CreateBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg == nil {
		return nil, errors.New("app config is nil")
	}

	conv := converter(cfg)
	store, err := f.OpenStore(ctx, cfg, conv)
	if err != nil {
		return nil, err
	}

	caches := cache.NewManager()
	resolver, chatErr := f.Resolver(cfg, caches)

	opts := []services.Option{services.WithMetrics(f.metrics)}
	if chatErr != nil {
		opts = append(opts, services.WithChatError(chatErr))
	}
	if pub := f.Publisher(cfg); pub != nil {
		opts = append(opts, services.WithPublisher(pub))
	}

	if cfg.ChatCacheTTL > 0 {
		caches.StartCleanup(cfg.ChatCacheTTL)
	}

	return &Backend{
		Service: services.NewWasteService(store, conv, resolver, opts...),
		Store:   store,
		Type:    BackendType(cfg.DataBackend),
		ChatErr: chatErr,
		caches:  caches,
	}, nil
}

// OpenStore opens the entry store selected by DATA_BACKEND.
func (f *Factory) OpenStore(ctx context.Context, cfg *config.Config, conv *core.UnitConverter) (storage.EntryStore, error) {
	switch bt := BackendType(cfg.DataBackend); bt {
	case MemoryBackend:
		if cfg.SeedFile == "" {
			f.logger.Info("Initialized memory backend")
			return memory.New(), nil
		}
		store, err := memory.NewFromFile(cfg.SeedFile, conv)
		if err != nil {
			return nil, fmt.Errorf("failed to seed memory backend: %w", err)
		}
		f.logger.Info("Initialized memory backend", "seed_file", cfg.SeedFile, "entries", store.Len())
		return store, nil

	case SQLiteBackend:
		repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil

	case PostgresBackend:
		repo, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("postgres unreachable: %w", err)
		}
		f.logger.Info("Initialized Postgres backend")
		return repo, nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, bt)
	}
}

// Publisher returns the AMQP publisher, or nil when AMQP_URL is unset or
// the broker is unreachable.
func (f *Factory) Publisher(cfg *config.Config) services.EventPublisher {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// Resolver builds the chat fallback chain for CHAT_MODE. The returned error
// is the credential problem of an online setup; the resolver is usable
// either way. The remote answer cache is registered with caches.
func (f *Factory) Resolver(cfg *config.Config, caches *cache.Manager) (*chat.Resolver, error) {
	mode, err := chat.ParseMode(cfg.ChatMode)
	if err != nil {
		f.logger.Warn("Unknown chat mode, using auto", log.FieldChatMode, cfg.ChatMode)
		mode = chat.ModeAuto
	}

	chatLog := f.logger.WithComponent(log.ComponentChat)
	opts := []chat.Option{
		chat.WithObserver(func(stage chat.Stage) {
			chatLog.Debug("Chat answered", log.NewFields().WithChatStage(string(mode), string(stage)).ToSlice()...)
		}),
	}

	if cfg.ChatSeed != nil {
		opts = append(opts, chat.WithSeed(*cfg.ChatSeed))
	}
	if cfg.ChatDataContext {
		opts = append(opts, chat.WithEntryContext())
	}

	if cfg.ChatResponsesFile != "" {
		responses, err := chat.LoadResponses(cfg.ChatResponsesFile)
		if err != nil {
			f.logger.Warn("Using built-in chat responses", log.FieldError, err)
		} else {
			opts = append(opts, chat.WithResponses(responses))
		}
	}

	var chatErr error
	if mode == chat.ModeOnline {
		if chatErr = cfg.ValidateChat(); chatErr == nil {
			remote, err := llm.NewRemoteClient(remoteConfig(cfg))
			if err != nil {
				chatErr = err
			} else {
				opts = append(opts, chat.WithRemote(remote))
				if c := remote.Cache(); c != nil && caches != nil {
					caches.Register(c)
				}
			}
		}
		if chatErr != nil {
			f.logger.Warn("Chat requests will fail until configured", log.FieldError, chatErr,
				log.FieldErrorType, log.ErrorTypeConfiguration)
		}
	}

	if mode != chat.ModeOffline {
		opts = append(opts, chat.WithLocal(llm.NewLocalModel(localConfig(cfg))))
	}

	f.logger.Info("Chat resolver ready", log.FieldChatMode, string(mode),
		"seeded", cfg.ChatSeed != nil, "data_context", cfg.ChatDataContext)
	return chat.NewResolver(mode, opts...), chatErr
}
