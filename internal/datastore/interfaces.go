// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"log"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/errors"
)

// ErrRecordNotFound is returned when an owner-scoped record lookup matches nothing.
var ErrRecordNotFound = errors.Newf("record not found").
	Component("datastore").
	Category(errors.CategoryNotFound).
	Build()

// ErrUserNotFound is returned when no local user matches the given username.
var ErrUserNotFound = errors.Newf("user not found").
	Component("datastore").
	Category(errors.CategoryNotFound).
	Build()

// Interface abstracts the underlying database implementation and defines the
// operations the rest of the application may perform on local storage.
type Interface interface {
	Open() error
	Close() error

	// Measurement records
	CreateRecord(ownerID string, shrimpCount int, biomass, feedMeasurement float64) (string, error)
	RecordsByOwner(ownerID string) ([]Record, error)
	LatestRecord(ownerID string) (*Record, error)
	DeleteRecord(localID uint, ownerID string) (*DeletedRecord, error)
	UnsyncedRecords(ownerID string) ([]Record, error)
	MarkOwnerSynced(ownerID string) error

	// Credential cache
	UserByUsername(username string) (*User, error)
	CacheUser(user *User) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance for the configured local database.
func New(settings *conf.Settings) Interface {
	return &SQLiteStore{Settings: settings}
}

// createGormLogger builds a GORM logger that stays quiet unless debugging.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Silent
	if debug {
		level = gormlogger.Warn
	}
	return gormlogger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}
