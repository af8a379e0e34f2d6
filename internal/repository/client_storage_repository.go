package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ClientStorageRepo persists per-client session keys (bearer token, cached
// identity, pending course) in the client_storage table. It satisfies
// session.Storage.
type ClientStorageRepo struct{ DB *sql.DB }

func NewClientStorageRepo(db *sql.DB) *ClientStorageRepo { return &ClientStorageRepo{DB: db} }

// Get returns the value stored under (clientID, key).
func (r *ClientStorageRepo) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	var v string
	err := r.DB.QueryRowContext(ctx,
		"SELECT v FROM client_storage WHERE client_id=? AND k=? LIMIT 1",
		clientID, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set inserts or replaces a value.
func (r *ClientStorageRepo) Set(ctx context.Context, clientID, key, value string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO client_storage (client_id, k, v, updated_at) VALUES (?,?,?,UTC_TIMESTAMP()) "+
			"ON DUPLICATE KEY UPDATE v=VALUES(v), updated_at=VALUES(updated_at)",
		clientID, key, value)
	return err
}

// Delete removes the given keys of a client.
func (r *ClientStorageRepo) Delete(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, 0, len(keys)+1)
	args = append(args, clientID)
	for _, k := range keys {
		args = append(args, k)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM client_storage WHERE client_id=? AND k IN ("+placeholders+")",
		args...)
	return err
}

// PurgeOlderThan removes rows not written for the given number of days and
// returns how many were deleted. The janitor calls it so abandoned clients
// do not accumulate.
func (r *ClientStorageRepo) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM client_storage WHERE updated_at < UTC_TIMESTAMP() - INTERVAL ? DAY",
		days)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
