// Package auth verifies user credentials against the remote store first,
// falling back to the locally cached credential set. The remote store is
// authoritative but must never block operation when unreachable.
package auth

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/aquasense/shrimpscale/internal/datastore"
	"github.com/aquasense/shrimpscale/internal/errors"
	"github.com/aquasense/shrimpscale/internal/remotestore"
)

// ErrInvalidCredentials is returned when neither credential source matches.
var ErrInvalidCredentials = errors.Newf("invalid credentials").
	Component("auth").
	Category(errors.CategoryValidation).
	Build()

// RemoteSource is the credential lookup the gateway performs against the
// remote store. Satisfied by *remotestore.Store.
type RemoteSource interface {
	FindUser(ctx context.Context, username string) (*remotestore.User, error)
}

// Gateway authenticates users with a fixed two-provider priority: remote
// first with a write-through local cache, local cache second.
type Gateway struct {
	local   datastore.Interface
	remote  RemoteSource // nil when no remote store is configured
	timeout time.Duration
	cache   *gocache.Cache // short-lived memo of remote user documents
}

// NewGateway creates an authentication gateway. remote may be nil.
func NewGateway(local datastore.Interface, remote RemoteSource, timeout time.Duration) *Gateway {
	return &Gateway{
		local:   local,
		remote:  remote,
		timeout: timeout,
		cache:   gocache.New(time.Minute, 5*time.Minute),
	}
}

// Verify checks the supplied credentials and returns the user id of the
// matched credential. Remote verification is attempted once with a bounded
// timeout; any remote failure falls through to the local cache without
// retrying. A user present only locally still authenticates offline.
func (g *Gateway) Verify(ctx context.Context, username, password string) (string, error) {
	if userID, ok := g.verifyRemote(ctx, username, password); ok {
		return userID, nil
	}
	if userID, ok := g.verifyLocal(username, password); ok {
		return userID, nil
	}
	return "", ErrInvalidCredentials
}

func (g *Gateway) verifyRemote(ctx context.Context, username, password string) (string, bool) {
	if g.remote == nil {
		return "", false
	}

	var user *remotestore.User
	if cached, found := g.cache.Get(username); found {
		user = cached.(*remotestore.User)
	} else {
		lookupCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		found, err := g.remote.FindUser(lookupCtx, username)
		if err != nil {
			getLogger().Debug("remote verification unavailable, falling back to local",
				"username", username, "error", err)
			return "", false
		}
		user = found
		g.cache.Set(username, user, gocache.DefaultExpiration)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", false
	}

	// Cache the verified credential for offline re-authentication, with the
	// remote id converted to its store-neutral string form. Insert only; an
	// existing local entry keeps its hash.
	userID := user.ID.Hex()
	if err := g.local.CacheUser(&datastore.User{
		ID:           userID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}); err != nil {
		getLogger().Warn("failed to cache remote credential locally",
			"username", username, "error", err)
	}

	getLogger().Info("user verified against remote store", "username", username)
	return userID, true
}

func (g *Gateway) verifyLocal(username, password string) (string, bool) {
	user, err := g.local.UserByUsername(username)
	if err != nil {
		return "", false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", false
	}

	getLogger().Info("user verified against local cache", "username", username)
	return user.ID, true
}
