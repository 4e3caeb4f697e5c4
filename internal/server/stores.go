package server

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/policy-digest-api/internal/models"
	"github.com/noah-isme/policy-digest-api/internal/repository"
	"github.com/noah-isme/policy-digest-api/pkg/config"
	"github.com/noah-isme/policy-digest-api/pkg/database"
)

type documentStore interface {
	List(ctx context.Context) ([]models.PolicyDocument, error)
	FindByID(ctx context.Context, id string) (*models.PolicyDocument, error)
	Save(ctx context.Context, sortOrder int, doc models.PolicyDocument) error
}

type versionStore interface {
	ListByDocument(ctx context.Context, documentID string) ([]models.DocumentVersion, error)
	Save(ctx context.Context, v models.DocumentVersion) error
}

type settingsStore interface {
	Get(ctx context.Context, userID string) (*models.UserAlertSettings, error)
	Upsert(ctx context.Context, settings *models.UserAlertSettings) error
}

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, user models.User) error
}

// Stores bundles the repositories of one backend.
type Stores struct {
	Driver    string
	Documents documentStore
	Versions  versionStore
	Settings  settingsStore
	Users     userStore

	ping  func(ctx context.Context) error
	close func() error
}

// Ping reports whether the backend is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// NewMemoryStores returns empty in-memory repositories.
func NewMemoryStores() *Stores {
	store := repository.NewMemoryStore()
	return &Stores{
		Driver:    config.StoreMemory,
		Documents: store.Documents(),
		Versions:  store.Versions(),
		Settings:  store.AlertSettings(),
		Users:     store.Users(),
	}
}

// NewPostgresStores wraps an open database in the Postgres repositories.
func NewPostgresStores(db *sqlx.DB) *Stores {
	return &Stores{
		Driver:    config.StorePostgres,
		Documents: repository.NewDocumentRepository(db),
		Versions:  repository.NewVersionRepository(db),
		Settings:  repository.NewAlertSettingsRepository(db),
		Users:     repository.NewUserRepository(db),
		ping:      db.PingContext,
		close:     db.Close,
	}
}

// OpenStores selects the backend configured by STORE_DRIVER. The Postgres
// schema is migrated before the stores are returned.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.Store.Driver != config.StorePostgres {
		return NewMemoryStores(), nil
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return NewPostgresStores(db), nil
}
