package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/datastore"
	"github.com/aquasense/shrimpscale/internal/remotestore"
)

const testTimeout = 100 * time.Millisecond

// stubRemote implements RemoteSource with canned users and an on/off switch.
type stubRemote struct {
	users     map[string]*remotestore.User
	reachable bool
	lookups   int
}

func (s *stubRemote) FindUser(ctx context.Context, username string) (*remotestore.User, error) {
	s.lookups++
	if !s.reachable {
		return nil, remotestore.ErrUnavailable
	}
	user, ok := s.users[username]
	if !ok {
		return nil, remotestore.ErrNoUser
	}
	return user, nil
}

func openStore(t *testing.T) datastore.Interface {
	t.Helper()
	settings := &conf.Settings{}
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	store := datastore.New(settings)
	require.NoError(t, store.Open())
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func remoteUser(t *testing.T, username, password string) *remotestore.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &remotestore.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
}

func TestVerifyBootstrapAdminOffline(t *testing.T) {
	store := openStore(t)
	gateway := NewGateway(store, nil, testTimeout)

	userID, err := gateway.Verify(context.Background(), "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, datastore.BootstrapUserID, userID)

	_, err = gateway.Verify(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRemoteThenOffline(t *testing.T) {
	store := openStore(t)
	farmer := remoteUser(t, "farmer", "secret")
	remote := &stubRemote{users: map[string]*remotestore.User{"farmer": farmer}, reachable: true}
	gateway := NewGateway(store, remote, testTimeout)

	userID, err := gateway.Verify(context.Background(), "farmer", "secret")
	require.NoError(t, err)
	assert.Equal(t, farmer.ID.Hex(), userID)

	// Idempotent: the same credentials yield the same id.
	again, err := gateway.Verify(context.Background(), "farmer", "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, again)

	// Remote goes away; the cached credential authenticates with the same id.
	remote.reachable = false
	offline := NewGateway(store, remote, testTimeout)
	offlineID, err := offline.Verify(context.Background(), "farmer", "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, offlineID)
}

func TestVerifyRemoteHashMismatchFallsThrough(t *testing.T) {
	store := openStore(t)
	remote := &stubRemote{users: map[string]*remotestore.User{"farmer": remoteUser(t, "farmer", "remote-pw")}, reachable: true}
	gateway := NewGateway(store, remote, testTimeout)

	// Local user with the same username but a different password. A remote
	// mismatch must still consult the local cache.
	hash, err := bcrypt.GenerateFromPassword([]byte("local-pw"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.CacheUser(&datastore.User{ID: "local-1", Username: "farmer", PasswordHash: string(hash)}))

	userID, err := gateway.Verify(context.Background(), "farmer", "local-pw")
	require.NoError(t, err)
	assert.Equal(t, "local-1", userID)
}

func TestVerifyMemoizesRemoteLookups(t *testing.T) {
	store := openStore(t)
	remote := &stubRemote{users: map[string]*remotestore.User{"farmer": remoteUser(t, "farmer", "secret")}, reachable: true}
	gateway := NewGateway(store, remote, testTimeout)

	for i := 0; i < 3; i++ {
		_, err := gateway.Verify(context.Background(), "farmer", "secret")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, remote.lookups, "remote document should be memoized within the TTL")
}

func TestVerifyUnknownUser(t *testing.T) {
	store := openStore(t)
	remote := &stubRemote{users: map[string]*remotestore.User{}, reachable: true}
	gateway := NewGateway(store, remote, testTimeout)

	_, err := gateway.Verify(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
