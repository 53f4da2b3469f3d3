// Package remotestore implements the best-effort MongoDB mirror of the
// local record store. Every operation opens and closes its own connection
// with a bounded server-selection timeout; a device that sleeps and wakes
// never holds a stale pooled connection.
package remotestore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/errors"
)

const (
	usersCollection   = "users"
	recordsCollection = "biomassrecords"
)

// ErrUnavailable is returned when no remote store is configured. Callers
// treat it like any other remote failure and fall back to local semantics.
var ErrUnavailable = errors.Newf("remote store not configured").
	Component("remotestore").
	Category(errors.CategoryNetwork).
	Build()

// ErrNoUser is returned when the remote users collection has no matching document.
var ErrNoUser = errors.Newf("no such remote user").
	Component("remotestore").
	Category(errors.CategoryNotFound).
	Build()

// User mirrors a document in the remote users collection.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
}

// RecordDocument is the remote schema of a measurement record. OwnerID is
// either a primitive.ObjectID or a plain string; matching queries tolerate
// both representations.
type RecordDocument struct {
	OwnerID         any       `bson:"ownerId"`
	RecordID        string    `bson:"recordId"`
	ShrimpCount     int       `bson:"shrimpCount"`
	Biomass         float64   `bson:"biomass"`
	FeedMeasurement float64   `bson:"feedMeasurement"`
	DateTime        time.Time `bson:"dateTime"`
	TimestampStr    string    `bson:"timestamp_str"`
	SyncedAt        time.Time `bson:"syncedAt"`
}

// OwnerRef converts an owner id to the remote store's native id type when
// syntactically valid, keeping it as a plain string otherwise.
func OwnerRef(ownerID string) any {
	if oid, err := primitive.ObjectIDFromHex(ownerID); err == nil {
		return oid
	}
	return ownerID
}

// Store talks to the configured MongoDB deployment.
type Store struct {
	settings *conf.RemoteSettings
}

// New creates a remote store for the given settings. An unconfigured remote
// is valid; operations then return ErrUnavailable.
func New(settings *conf.RemoteSettings) *Store {
	return &Store{settings: settings}
}

// connect dials the deployment and verifies reachability within the timeout.
func (s *Store) connect(ctx context.Context, timeout time.Duration) (*mongo.Client, error) {
	if !s.settings.Configured() {
		return nil, ErrUnavailable
	}

	opts := options.Client().
		ApplyURI(s.settings.URI).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, netError(err, "connect")
	}

	// Connect is lazy; ping to surface unreachability here, not mid-operation.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, netError(err, "ping")
	}
	return client, nil
}

// FindUser looks up a credential document by username.
func (s *Store) FindUser(ctx context.Context, username string) (*User, error) {
	client, err := s.connect(ctx, s.settings.AuthTimeout)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	coll := client.Database(s.settings.Database).Collection(usersCollection)

	var user User
	err = coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoUser
		}
		return nil, netError(err, "find_user")
	}
	return &user, nil
}

// InsertRecords bulk-inserts the documents in one remote write. It returns
// nil only when every document was accepted.
func (s *Store) InsertRecords(ctx context.Context, docs []RecordDocument) error {
	if len(docs) == 0 {
		return nil
	}

	client, err := s.connect(ctx, s.settings.SyncTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	payload := make([]any, len(docs))
	for i := range docs {
		payload[i] = docs[i]
	}

	coll := client.Database(s.settings.Database).Collection(recordsCollection)
	result, err := coll.InsertMany(ctx, payload)
	if err != nil {
		return netError(err, "insert_records")
	}
	if len(result.InsertedIDs) != len(docs) {
		return errors.Newf("partial insert: %d of %d documents accepted",
			len(result.InsertedIDs), len(docs)).
			Component("remotestore").
			Category(errors.CategoryNetwork).
			Build()
	}

	getLogger().Info("records mirrored to remote store", "inserted", len(result.InsertedIDs))
	return nil
}

// DeleteRecord removes the document matching the recordId and either
// representation of the owner id. It reports whether a document matched.
func (s *Store) DeleteRecord(ctx context.Context, recordID, ownerID string) (bool, error) {
	client, err := s.connect(ctx, s.settings.DeleteTimeout)
	if err != nil {
		return false, err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	ownerClauses := []bson.M{{"ownerId": ownerID}}
	if oid, err := primitive.ObjectIDFromHex(ownerID); err == nil {
		ownerClauses = append(ownerClauses, bson.M{"ownerId": oid})
	}
	filter := bson.M{
		"recordId": recordID,
		"$or":      ownerClauses,
	}

	coll := client.Database(s.settings.Database).Collection(recordsCollection)
	result, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, netError(err, "delete_record")
	}

	matched := result.DeletedCount > 0
	getLogger().Info("remote delete attempted", "record_id", recordID, "matched", matched)
	return matched, nil
}

// netError creates a categorized network error with operation context.
func netError(err error, operation string) error {
	return errors.New(err).
		Component("remotestore").
		Category(errors.CategoryNetwork).
		Context("operation", operation).
		Build()
}
