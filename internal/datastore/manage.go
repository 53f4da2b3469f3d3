package datastore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aquasense/shrimpscale/internal/errors"
)

// CreateRecord appends a new measurement record for the given owner. The
// record gets a fresh globally unique recordId and the local wall-clock
// timestamp; it starts unsynced.
func (ds *DataStore) CreateRecord(ownerID string, shrimpCount int, biomass, feedMeasurement float64) (string, error) {
	if ds.DB == nil {
		return "", dbError(gorm.ErrInvalidDB, "create_record")
	}

	record := Record{
		OwnerID:         ownerID,
		RecordID:        uuid.NewString(),
		ShrimpCount:     shrimpCount,
		Biomass:         biomass,
		FeedMeasurement: feedMeasurement,
		CreatedAt:       time.Now().Format(time.RFC3339),
		Synced:          false,
	}
	if err := ds.DB.Create(&record).Error; err != nil {
		return "", dbError(err, "create_record", "owner_id", ownerID)
	}

	getLogger().Debug("record created",
		"record_id", record.RecordID, "owner_id", ownerID, "count", shrimpCount)
	return record.RecordID, nil
}

// RecordsByOwner returns all records belonging to the owner, newest first.
// Ordering follows local insertion order, not parsed timestamps.
func (ds *DataStore) RecordsByOwner(ownerID string) ([]Record, error) {
	var records []Record
	err := ds.DB.Where("owner_id = ?", ownerID).Order("id DESC").Find(&records).Error
	if err != nil {
		return nil, dbError(err, "records_by_owner", "owner_id", ownerID)
	}
	return records, nil
}

// LatestRecord returns the most recent record. An empty ownerID returns the
// most recent record across all owners, used by the main-menu summary.
func (ds *DataStore) LatestRecord(ownerID string) (*Record, error) {
	query := ds.DB.Order("id DESC")
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}

	var record Record
	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, dbError(err, "latest_record", "owner_id", ownerID)
	}
	return &record, nil
}

// DeleteRecord removes a record by its local id, scoped to the owner. A
// record belonging to a different owner is reported as not found, never
// deleted. The removed record's recordId and sync state are returned so the
// caller can mirror the delete remotely.
func (ds *DataStore) DeleteRecord(localID uint, ownerID string) (*DeletedRecord, error) {
	var record Record
	err := ds.DB.Where("id = ? AND owner_id = ?", localID, ownerID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, dbError(err, "delete_record", "local_id", localID)
	}

	err = ds.DB.Where("id = ? AND owner_id = ?", localID, ownerID).Delete(&Record{}).Error
	if err != nil {
		return nil, dbError(err, "delete_record", "local_id", localID)
	}

	getLogger().Info("record deleted locally",
		"record_id", record.RecordID, "owner_id", ownerID, "was_synced", record.Synced)
	return &DeletedRecord{RecordID: record.RecordID, Synced: record.Synced}, nil
}

// UnsyncedRecords returns the owner's records that have not yet been
// mirrored to the remote store, in insertion order.
func (ds *DataStore) UnsyncedRecords(ownerID string) ([]Record, error) {
	var records []Record
	err := ds.DB.Where("owner_id = ? AND synced = ?", ownerID, false).
		Order("id ASC").Find(&records).Error
	if err != nil {
		return nil, dbError(err, "unsynced_records", "owner_id", ownerID)
	}
	return records, nil
}

// MarkOwnerSynced flips every unsynced record of the owner to synced in one
// update. Callers must invoke this only after a confirmed remote write.
func (ds *DataStore) MarkOwnerSynced(ownerID string) error {
	err := ds.DB.Model(&Record{}).
		Where("owner_id = ? AND synced = ?", ownerID, false).
		Update("synced", true).Error
	if err != nil {
		return dbError(err, "mark_owner_synced", "owner_id", ownerID)
	}
	return nil
}

// UserByUsername looks up a cached credential by its unique username.
func (ds *DataStore) UserByUsername(username string) (*User, error) {
	var user User
	if err := ds.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dbError(err, "user_by_username", "username", username)
	}
	return &user, nil
}

// CacheUser stores a remotely verified credential for offline use. Insert
// only: an existing local entry for the username is never overwritten.
func (ds *DataStore) CacheUser(user *User) error {
	var existing User
	err := ds.DB.Where("username = ?", user.Username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dbError(err, "cache_user", "username", user.Username)
	}

	if err := ds.DB.Create(user).Error; err != nil {
		return dbError(err, "cache_user", "username", user.Username)
	}
	getLogger().Debug("cached remote credential", "username", user.Username, "user_id", user.ID)
	return nil
}
