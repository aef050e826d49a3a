package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fadilmartias/ats-portal/internal/config"
	"github.com/fadilmartias/ats-portal/internal/model"
	"github.com/fadilmartias/ats-portal/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store persists tokens by client key. A missing key loads as "".
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, token string) error
	Clear(ctx context.Context, key string) error
}

type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: map[string]string{}}
}

func (m *MemoryStore) Load(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[key], nil
}

func (m *MemoryStore) Save(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, key)
	return nil
}

// GormStore keeps tokens in a SQL table so they survive restarts.
type GormStore struct {
	tokens *repository.StoredTokenRepository
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	tokens := repository.NewStoredTokenRepository(db)
	if err := tokens.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate stored tokens: %w", err)
	}
	return &GormStore{tokens: tokens}, nil
}

func (g *GormStore) Load(ctx context.Context, key string) (string, error) {
	row, err := g.tokens.FindByKey(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Token, nil
}

func (g *GormStore) Save(ctx context.Context, key, token string) error {
	return g.tokens.Save(ctx, &model.StoredToken{
		Key:       key,
		Token:     token,
		UpdatedAt: time.Now(),
	})
}

func (g *GormStore) Clear(ctx context.Context, key string) error {
	return g.tokens.DeleteByKey(ctx, key)
}

// OpenStore opens the store selected by cfg.Driver. The returned close
// function releases the database handle.
func OpenStore(cfg *config.SessionConfig, production bool) (Store, func() error, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), func() error { return nil }, nil
	case "sqlite", "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "ats-session.db"
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = config.LoadDBConfig().DSN()
		}
		dialector = postgres.Open(dsn)
	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}

	gormConfig := &gorm.Config{}
	if production {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("open session database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get session database instance: %w", err)
	}
	if cfg.Driver == "postgres" {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		// sqlite serializes writers
		sqlDB.SetMaxOpenConns(1)
	}

	store, err := NewGormStore(db)
	if err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return store, sqlDB.Close, nil
}
