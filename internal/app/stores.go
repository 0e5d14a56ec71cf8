package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/faculty_chat/internal/config"
	"github.com/Freeeeeet/faculty_chat/internal/repository"
	"github.com/Freeeeeet/faculty_chat/internal/repository/memory"
	"github.com/Freeeeeet/faculty_chat/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Stores хранит набор хранилищ для сервисов
type Stores struct {
	Schools     service.SchoolStore
	Teachers    service.TeacherStore
	Invitations service.InvitationStore
	Messages    service.MessageStore

	pool *pgxpool.Pool
}

// OpenStores открывает хранилище, выбранное в конфиге
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return MemoryStores(memory.NewStore()), nil
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.MigrationsAuto {
		if err := migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &Stores{
		Schools:     repository.NewSchoolRepository(pool),
		Teachers:    repository.NewTeacherRepository(pool),
		Invitations: repository.NewInvitationRepository(pool),
		Messages:    repository.NewMessageRepository(pool),
		pool:        pool,
	}, nil
}

// MemoryStores оборачивает in-memory хранилище
func MemoryStores(store *memory.Store) *Stores {
	return &Stores{
		Schools:     store,
		Teachers:    store,
		Invitations: store,
		Messages:    store,
	}
}

// Close закрывает пул, если он есть
func (s *Stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate применяет миграции вне зависимости от MIGRATIONS_AUTO
func Migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrations need STORE=%s", config.StorePostgres)
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	return migrate(ctx, pool, logger)
}

func migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	migrator, err := NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		return err
	}

	version, err := migrator.Version(ctx)
	if err != nil {
		return err
	}
	logger.Info("Database schema version", zap.Int64("version", version))
	return nil
}
