// Package cloudsync pushes locally created measurement records to the
// remote store and mirrors deletes. Sync is a per-owner, all-or-nothing
// batch: local synced flags flip only after a confirmed remote write, so a
// record can never be silently lost between stores.
package cloudsync

import (
	"context"
	"math"
	"time"

	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/datastore"
	"github.com/aquasense/shrimpscale/internal/observability"
	"github.com/aquasense/shrimpscale/internal/remotestore"
)

// Remote is the remote-store surface the engine depends on. Satisfied by
// *remotestore.Store.
type Remote interface {
	InsertRecords(ctx context.Context, docs []remotestore.RecordDocument) error
	DeleteRecord(ctx context.Context, recordID, ownerID string) (bool, error)
}

// DeleteResult reports the outcome of a delete spanning both stores.
type DeleteResult struct {
	RecordID        string
	RemoteAttempted bool // A remote delete was issued because the record had been synced
	RemoteMatched   bool // The remote store had a matching document
}

// Engine synchronizes the local record store with the remote mirror.
type Engine struct {
	local     datastore.Interface
	remote    Remote // nil when no remote store is configured
	remoteCfg *conf.RemoteSettings
	metrics   *observability.Metrics
}

// New creates a sync engine. remote may be nil.
func New(local datastore.Interface, remote Remote, remoteCfg *conf.RemoteSettings, metrics *observability.Metrics) *Engine {
	return &Engine{local: local, remote: remote, remoteCfg: remoteCfg, metrics: metrics}
}

// SyncOwner pushes the owner's unsynced records to the remote store and
// returns how many were confirmed. With nothing pending it returns without
// touching the network. On any remote failure no local state changes.
func (e *Engine) SyncOwner(ctx context.Context, ownerID string) (int, error) {
	records, err := e.local.UnsyncedRecords(ownerID)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		getLogger().Debug("no unsynced records", "owner_id", ownerID)
		return 0, nil
	}
	if e.remote == nil {
		return 0, remotestore.ErrUnavailable
	}

	docs := make([]remotestore.RecordDocument, 0, len(records))
	now := time.Now()
	for i := range records {
		docs = append(docs, toDocument(&records[i], now))
	}

	syncCtx, cancel := context.WithTimeout(ctx, e.remoteCfg.SyncTimeout)
	defer cancel()

	if err := e.remote.InsertRecords(syncCtx, docs); err != nil {
		e.metrics.IncSyncFailures()
		return 0, err
	}

	// The batch is confirmed remote; only now flip the local flags.
	if err := e.local.MarkOwnerSynced(ownerID); err != nil {
		return 0, err
	}

	e.metrics.AddRecordsSynced(len(docs))
	getLogger().Info("records synced", "owner_id", ownerID, "count", len(docs))
	return len(docs), nil
}

// Delete removes a record locally and, when it had been synced, issues a
// best-effort remote delete matched by recordId. Local deletion is never
// blocked or rolled back by a remote failure; the result tells the caller
// whether the remote side had a matching document.
func (e *Engine) Delete(ctx context.Context, localID uint, ownerID string) (*DeleteResult, error) {
	deleted, err := e.local.DeleteRecord(localID, ownerID)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{RecordID: deleted.RecordID}
	if !deleted.Synced || e.remote == nil {
		return result, nil
	}

	result.RemoteAttempted = true
	deleteCtx, cancel := context.WithTimeout(ctx, e.remoteCfg.DeleteTimeout)
	defer cancel()

	matched, err := e.remote.DeleteRecord(deleteCtx, deleted.RecordID, ownerID)
	if err != nil {
		getLogger().Warn("remote delete failed, local delete stands",
			"record_id", deleted.RecordID, "error", err)
		return result, nil
	}
	result.RemoteMatched = matched
	return result, nil
}

// toDocument transforms a local record into the remote schema: metrics are
// rounded to 2 decimals, the owner id is converted to the native remote id
// type when valid, and the stored timestamp is parsed with a fallback to
// the current time when malformed.
func toDocument(record *datastore.Record, syncedAt time.Time) remotestore.RecordDocument {
	createdAt, err := time.Parse(time.RFC3339, record.CreatedAt)
	if err != nil {
		getLogger().Warn("malformed record timestamp, using current time",
			"record_id", record.RecordID, "created_at", record.CreatedAt)
		createdAt = syncedAt
	}

	return remotestore.RecordDocument{
		OwnerID:         remotestore.OwnerRef(record.OwnerID),
		RecordID:        record.RecordID,
		ShrimpCount:     record.ShrimpCount,
		Biomass:         round2(record.Biomass),
		FeedMeasurement: round2(record.FeedMeasurement),
		DateTime:        createdAt,
		TimestampStr:    createdAt.Format("2006-01-02 15:04:05"),
		SyncedAt:        syncedAt,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
