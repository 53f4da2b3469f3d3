package remotestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aquasense/shrimpscale/internal/conf"
)

func TestOwnerRef(t *testing.T) {
	hex := "507f1f77bcf86cd799439011"
	oid, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	assert.Equal(t, oid, OwnerRef(hex), "a valid hex id becomes a native ObjectID")

	assert.Equal(t, "local-admin", OwnerRef("local-admin"), "non-hex ids stay strings")
	assert.Equal(t, "", OwnerRef(""))
}

func TestUnconfiguredRemoteIsUnavailable(t *testing.T) {
	store := New(&conf.RemoteSettings{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := store.FindUser(ctx, "admin")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = store.InsertRecords(ctx, []RecordDocument{{RecordID: "r1"}})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = store.DeleteRecord(ctx, "r1", "owner")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestInsertNothingNeedsNoConnection(t *testing.T) {
	store := New(&conf.RemoteSettings{})
	assert.NoError(t, store.InsertRecords(context.Background(), nil))
}
