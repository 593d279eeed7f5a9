package backend

import (
	"context"
	"fmt"

	"expensemcp/internal/amqp"
	"expensemcp/internal/ledger"
	"expensemcp/internal/ledger/memory"
	"expensemcp/internal/log"
	"expensemcp/internal/services"
	"expensemcp/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(ctx, config)
	if err != nil {
		return nil, err
	}

	publisher := f.openPublisher(config)
	svc := services.NewExpenseService(store, publisher, f.logger)

	f.logger.Info("Initialized ledger backend",
		"backend", config.Type.String(),
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Store:   store,
		Service: svc,
		Cleanup: svc.Close,
	}, nil
}

func (f *DefaultFactory) openStore(ctx context.Context, config Config) (ledger.Store, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite ledger", "db_path", config.SQLiteDBPath)
		return repo, nil

	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.Info("Opened Postgres ledger")
		return repo, nil

	case MemoryBackend:
		store := memory.New()
		if err := store.Initialize(ctx); err != nil {
			return nil, err
		}
		f.logger.Warn("Using in-memory ledger, expenses are lost on restart")
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// openPublisher returns nil when AMQP is disabled or unreachable; the ledger keeps working without events.
func (f *DefaultFactory) openPublisher(config Config) services.EventPublisher {
	if config.AMQPURL == "" {
		return nil
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
