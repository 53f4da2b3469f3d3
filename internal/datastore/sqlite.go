package datastore

import (
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/errors"
)

// Bootstrap credential seeded when the local store starts with zero users,
// so the kiosk is usable before it has ever seen the remote store.
const (
	BootstrapUserID   = "local-admin"
	BootstrapUsername = "admin"
	bootstrapPassword = "admin"
	bootstrapEmail    = "admin@example.com"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the SQLite database connection. It is idempotent: the schema
// is migrated in place and the bootstrap credential is seeded only when the
// user table is empty.
func (store *SQLiteStore) Open() error {
	path := store.Settings.Output.SQLite.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(err).
				Component("datastore").
				Category(errors.CategoryFileIO).
				Context("db_path", path).
				Build()
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: createGormLogger(store.Settings.Debug),
	})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_path", path).
			Build()
	}
	store.DB = db

	if err := db.AutoMigrate(&User{}, &Record{}); err != nil {
		return dbError(err, "auto_migrate", "db_path", path)
	}

	if err := store.seedBootstrapUser(); err != nil {
		return err
	}

	getLogger().Info("local database opened", "path", path)
	return nil
}

// seedBootstrapUser provisions the offline admin credential on first run.
func (store *SQLiteStore) seedBootstrapUser() error {
	var count int64
	if err := store.DB.Model(&User{}).Count(&count).Error; err != nil {
		return dbError(err, "count_users")
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(bootstrapPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("operation", "seed_bootstrap_user").
			Build()
	}

	user := User{
		ID:           BootstrapUserID,
		Username:     BootstrapUsername,
		Email:        bootstrapEmail,
		PasswordHash: string(hash),
	}
	if err := store.DB.Create(&user).Error; err != nil {
		return dbError(err, "seed_bootstrap_user")
	}

	getLogger().Info("seeded bootstrap credential", "username", BootstrapUsername)
	return nil
}

// Close releases the underlying connection pool.
func (store *SQLiteStore) Close() error {
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	return sqlDB.Close()
}
