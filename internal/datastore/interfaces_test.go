package datastore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquasense/shrimpscale/internal/conf"
)

// createDatabase initializes a temporary database for testing purposes.
func createDatabase(t *testing.T) Interface {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := New(settings)
	require.NoError(t, store.Open(), "Failed to open database")

	t.Cleanup(func() {
		assert.NoError(t, store.Close(), "Failed to close datastore")
	})
	return store
}

func TestOpenSeedsBootstrapUserOnce(t *testing.T) {
	settings := &conf.Settings{}
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := New(settings)
	require.NoError(t, store.Open())

	user, err := store.UserByUsername(BootstrapUsername)
	require.NoError(t, err)
	assert.Equal(t, BootstrapUserID, user.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("admin")))
	require.NoError(t, store.Close())

	// A second Open on the same file must not re-seed or fail.
	store2 := New(settings)
	require.NoError(t, store2.Open())
	defer func() { assert.NoError(t, store2.Close()) }()

	again, err := store2.UserByUsername(BootstrapUsername)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, again.PasswordHash, "re-open must not regenerate the seeded hash")
}

func TestCreateAndListNewestFirst(t *testing.T) {
	store := createDatabase(t)

	counts := []int{5, 12, 0}
	for _, c := range counts {
		_, err := store.CreateRecord("owner-a", c, float64(c)*2.5, float64(c)*0.1)
		require.NoError(t, err)
	}

	records, err := store.RecordsByOwner("owner-a")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []int{0, 12, 5}, []int{records[0].ShrimpCount, records[1].ShrimpCount, records[2].ShrimpCount})
	for _, rec := range records {
		assert.False(t, rec.Synced, "new records must start unsynced")
		assert.NotEmpty(t, rec.RecordID)
		assert.NotEmpty(t, rec.CreatedAt)
	}
}

func TestLatestRecord(t *testing.T) {
	store := createDatabase(t)

	_, err := store.LatestRecord("owner-a")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = store.CreateRecord("owner-a", 3, 7.5, 0.26)
	require.NoError(t, err)
	_, err = store.CreateRecord("owner-b", 9, 22.5, 0.79)
	require.NoError(t, err)

	latest, err := store.LatestRecord("owner-a")
	require.NoError(t, err)
	assert.Equal(t, 3, latest.ShrimpCount)

	// Owner-less form returns the most recent record overall.
	overall, err := store.LatestRecord("")
	require.NoError(t, err)
	assert.Equal(t, 9, overall.ShrimpCount)
}

func TestDeleteRecordOwnerScoped(t *testing.T) {
	store := createDatabase(t)

	recordID, err := store.CreateRecord("owner-b", 7, 17.5, 0.61)
	require.NoError(t, err)

	records, err := store.RecordsByOwner("owner-b")
	require.NoError(t, err)
	localID := records[0].ID

	// A different owner presenting the correct local id must not delete it.
	_, err = store.DeleteRecord(localID, "owner-a")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	records, err = store.RecordsByOwner("owner-b")
	require.NoError(t, err)
	assert.Len(t, records, 1, "cross-owner delete must not remove the record")

	deleted, err := store.DeleteRecord(localID, "owner-b")
	require.NoError(t, err)
	assert.Equal(t, recordID, deleted.RecordID)
	assert.False(t, deleted.Synced)

	records, err = store.RecordsByOwner("owner-b")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMarkOwnerSynced(t *testing.T) {
	store := createDatabase(t)

	for i := 0; i < 3; i++ {
		_, err := store.CreateRecord("owner-a", i, 0, 0)
		require.NoError(t, err)
	}
	_, err := store.CreateRecord("owner-b", 99, 0, 0)
	require.NoError(t, err)

	unsynced, err := store.UnsyncedRecords("owner-a")
	require.NoError(t, err)
	assert.Len(t, unsynced, 3)

	require.NoError(t, store.MarkOwnerSynced("owner-a"))

	unsynced, err = store.UnsyncedRecords("owner-a")
	require.NoError(t, err)
	assert.Empty(t, unsynced)

	// The other owner's records are untouched.
	otherUnsynced, err := store.UnsyncedRecords("owner-b")
	require.NoError(t, err)
	assert.Len(t, otherUnsynced, 1)
}

func TestCacheUserInsertIfAbsent(t *testing.T) {
	store := createDatabase(t)

	remote := &User{ID: "656f5e4c9b1e8a0012345678", Username: "farmer", Email: "f@example.com", PasswordHash: "$2a$10$hash"}
	require.NoError(t, store.CacheUser(remote))

	// Caching again with a different hash must not overwrite the original.
	changed := &User{ID: "new-id", Username: "farmer", Email: "f@example.com", PasswordHash: "$2a$10$other"}
	require.NoError(t, store.CacheUser(changed))

	user, err := store.UserByUsername("farmer")
	require.NoError(t, err)
	assert.Equal(t, "656f5e4c9b1e8a0012345678", user.ID)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
}
