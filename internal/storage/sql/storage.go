package sql

import (
	"context"
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/secrets/internal/model"
	"github.com/mcoot/secrets/internal/storage"
)

// Config holds SQL storage settings
type Config struct {
	// Path is the sqlite database file
	Path string
}

// DefaultConfig returns the default SQL configuration
func DefaultConfig() Config {
	return Config{
		Path: "secrets.db",
	}
}

// Storage is a GORM-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// Open opens the sqlite database and runs migrations
func Open(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// AutoMigrate runs database migrations for the account table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&AccountModel{})
}

// New opens the database described by cfg
func New(cfg Config) (*Storage, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB creates a storage over an already migrated database
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// DB exposes the underlying handle
func (s *Storage) DB() *gorm.DB {
	return s.db
}

// Close closes the database
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	// Only a username clash is absorbed; an id clash still raises
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(fromAccount(account))
	if res.Error != nil {
		return insertError("create account", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrUsernameTaken
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return s.first(ctx, "id = ?", string(id))
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *Storage) FindOrCreateByProvider(ctx context.Context, candidate *model.Account) (*model.Account, bool, error) {
	provider, externalID, err := candidate.ExternalIdentity()
	if err != nil {
		return nil, false, err
	}

	column := "google_id"
	if provider == model.ProviderFacebook {
		column = "facebook_id"
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: column}}, DoNothing: true}).
		Create(fromAccount(candidate))
	if res.Error != nil {
		return nil, false, insertError("find or create account", res.Error)
	}
	if res.RowsAffected == 1 {
		return candidate.Clone(), true, nil
	}

	existing, err := s.first(ctx, column+" = ?", externalID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	m := fromAccount(account)
	res := s.db.WithContext(ctx).
		Model(&AccountModel{}).
		Where("id = ?", m.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		return storage.Unavailable("save account", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrAccountNotFound
	}
	return nil
}

func (s *Storage) ListAccountsWithSecret(ctx context.Context) ([]*model.Account, error) {
	var models []AccountModel
	err := s.db.WithContext(ctx).
		Where("secret IS NOT NULL").
		Order("created_at, id").
		Find(&models).Error
	if err != nil {
		return nil, storage.Unavailable("list accounts", err)
	}

	accounts := make([]*model.Account, 0, len(models))
	for i := range models {
		accounts = append(accounts, models[i].toAccount())
	}
	return accounts, nil
}

// insertError maps a failed insert. Conflicts on the absorbed column never
// get here, so a duplicate key means the id was taken.
func insertError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrAccountExists
	}
	return storage.Unavailable(op, err)
}

func (s *Storage) first(ctx context.Context, query string, arg any) (*model.Account, error) {
	var m AccountModel
	err := s.db.WithContext(ctx).Where(query, arg).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAccountNotFound
		}
		return nil, storage.Unavailable("get account", err)
	}
	return m.toAccount(), nil
}
