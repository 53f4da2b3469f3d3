// model.go defines the data model for locally persisted measurement data
package datastore

// User represents a credential usable for offline authentication. Users
// verified against the remote store are cached here verbatim, with the
// remote identifier converted to its string form.
type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex"`
	Email        string
	PasswordHash string
}

// Record represents a single completed measurement run.
type Record struct {
	ID              uint   `gorm:"primaryKey"`
	OwnerID         string `gorm:"index:idx_records_owner"`
	RecordID        string `gorm:"uniqueIndex"` // Join key for sync and delete, stable across stores
	ShrimpCount     int
	Biomass         float64
	FeedMeasurement float64
	CreatedAt       string // ISO-8601, local clock at save time
	Synced          bool   `gorm:"default:false"`
}

// DeletedRecord reports what a local delete removed, so the caller can
// decide whether a mirrored remote delete is needed.
type DeletedRecord struct {
	RecordID string
	Synced   bool
}
