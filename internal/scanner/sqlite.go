package scanner

import (
	"context"
	"database/sql"
	"time"

	"nightgate/internal/pkg/errs"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo on the gate device
)

const queueSchema = `
CREATE TABLE IF NOT EXISTS offline_scan_queue (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	kind          TEXT NOT NULL DEFAULT 'ticket',
	credential_id TEXT NOT NULL,
	credential    TEXT NOT NULL,
	scanned_at    TEXT NOT NULL,
	device_id     TEXT NOT NULL,
	sync_status   TEXT NOT NULL DEFAULT 'pending',
	retry_count   INTEGER NOT NULL DEFAULT 0,
	last_retry_at TEXT,
	synced_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_queue_status_scanned
	ON offline_scan_queue (sync_status, scanned_at);`

const queueColumns = `id, kind, credential_id, credential, scanned_at, device_id, sync_status, retry_count, last_retry_at, synced_at`

// SQLiteStore persists the offline scan queue in a local SQLite file so
// queued scans survive app restarts and device reboots.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(err, "failed to open offline queue database")
	}
	// One writer: SQLite serializes writes anyway and this avoids
	// SQLITE_BUSY under the reconciler/scanner overlap.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(queueSchema); err != nil {
		db.Close()
		return nil, errs.Wrap(err, "failed to initialize offline queue schema")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Enqueue(ctx context.Context, entry QueueEntry) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO offline_scan_queue (kind, credential_id, credential, scanned_at, device_id, sync_status, retry_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(entry.Kind), entry.CredentialID, entry.Credential,
		entry.ScannedAt.UTC().Format(time.RFC3339Nano),
		entry.DeviceID, string(SyncPending), 0,
	)
	if err != nil {
		return 0, errs.Wrap(err, "failed to enqueue offline scan")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Wrap(err, "failed to read offline scan id")
	}
	return id, nil
}

func (s *SQLiteStore) ListUnsynced(ctx context.Context) ([]QueueEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM offline_scan_queue
		WHERE sync_status IN ('pending', 'failed')
		ORDER BY scanned_at ASC`,
	)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list unsynced scans")
	}
	defer rows.Close()

	var entries []QueueEntry
	for rows.Next() {
		entry, err := scanQueueRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "failed to iterate unsynced scans")
	}
	return entries, nil
}

func (s *SQLiteStore) UpdateSync(ctx context.Context, id int64, status SyncStatus, retryCount int, lastRetryAt *time.Time, at time.Time) error {
	var last any
	if lastRetryAt != nil {
		last = lastRetryAt.UTC().Format(time.RFC3339Nano)
	}
	// synced_at records when the entry reached synced; retention counts
	// from that moment, not from the original scan.
	var synced any
	if status == SyncSynced {
		synced = at.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE offline_scan_queue
		SET sync_status = ?, retry_count = ?, last_retry_at = ?,
		    synced_at = COALESCE(?, synced_at)
		WHERE id = ?`,
		string(status), retryCount, last, synced, id,
	)
	if err != nil {
		return errs.Wrap(err, "failed to update offline scan status")
	}
	return nil
}

func (s *SQLiteStore) PurgeSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM offline_scan_queue
		WHERE sync_status = 'synced' AND synced_at IS NOT NULL AND synced_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, errs.Wrap(err, "failed to purge synced scans")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errs.Wrap(err, "failed to count purged scans")
	}
	return n, nil
}

// ListAll exists for diagnostics screens on the device.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]QueueEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM offline_scan_queue
		ORDER BY scanned_at ASC`,
	)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list offline scans")
	}
	defer rows.Close()

	var entries []QueueEntry
	for rows.Next() {
		entry, err := scanQueueRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "failed to iterate offline scans")
	}
	return entries, nil
}

func scanQueueRow(rows *sql.Rows) (QueueEntry, error) {
	var (
		entry     QueueEntry
		kind      string
		status    string
		scannedAt string
		lastRetry sql.NullString
		syncedAt  sql.NullString
	)
	if err := rows.Scan(
		&entry.ID, &kind, &entry.CredentialID, &entry.Credential, &scannedAt,
		&entry.DeviceID, &status, &entry.RetryCount, &lastRetry, &syncedAt,
	); err != nil {
		return QueueEntry{}, errs.Wrap(err, "failed to scan queue row")
	}

	entry.Kind = CredentialKind(kind)
	entry.SyncStatus = SyncStatus(status)

	at, err := time.Parse(time.RFC3339Nano, scannedAt)
	if err != nil {
		return QueueEntry{}, errs.Wrap(err, "corrupt scanned_at in queue row")
	}
	entry.ScannedAt = at

	if lastRetry.Valid {
		lr, err := time.Parse(time.RFC3339Nano, lastRetry.String)
		if err != nil {
			return QueueEntry{}, errs.Wrap(err, "corrupt last_retry_at in queue row")
		}
		entry.LastRetryAt = &lr
	}
	if syncedAt.Valid {
		sa, err := time.Parse(time.RFC3339Nano, syncedAt.String)
		if err != nil {
			return QueueEntry{}, errs.Wrap(err, "corrupt synced_at in queue row")
		}
		entry.SyncedAt = &sa
	}

	return entry, nil
}
