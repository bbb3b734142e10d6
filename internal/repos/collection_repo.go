package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"stash/internal/domain"
)

// CollectionRepo is the collection store: per (user, kind) an ordered
// entry list plus a version that advances on every successful replace.
// Conflict detection lives here; retry policy lives in the service.
type CollectionRepo struct{ db *sqlx.DB }

func NewCollectionRepo(db *sqlx.DB) *CollectionRepo { return &CollectionRepo{db: db} }

// Get returns the collection at its current version. A user with no
// collection row yet gets an empty collection at version 0; an unknown
// user is reported, not silently onboarded.
func (r *CollectionRepo) Get(ctx context.Context, userID string, kind domain.Kind) (domain.Collection, error) {
	col := domain.Collection{UserID: userID, Kind: kind}

	if err := r.userExists(ctx, r.db, userID); err != nil {
		return domain.Collection{}, err
	}

	err := r.db.GetContext(ctx, &col.Version,
		`SELECT version FROM collections WHERE user_id=? AND kind=?`, userID, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return col, nil
	}
	if err != nil {
		return domain.Collection{}, err
	}

	if err := r.db.SelectContext(ctx, &col.Entries, `
	  SELECT product_id, qty FROM collection_entries
	  WHERE user_id=? AND kind=?
	  ORDER BY position
	`, userID, kind); err != nil {
		return domain.Collection{}, err
	}
	return col, nil
}

// Replace overwrites the whole entry list, guarded by the version the
// caller read. A stale version loses with ErrConflict and the caller is
// expected to re-read and retry.
func (r *CollectionRepo) Replace(ctx context.Context, userID string, kind domain.Kind, entries []domain.Entry, readVersion int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.userExists(ctx, tx, userID); err != nil {
		return err
	}

	var current int64
	err = tx.GetContext(ctx, &current,
		`SELECT version FROM collections WHERE user_id=? AND kind=?`, userID, kind)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if current != readVersion {
		return fmt.Errorf("%s/%s at v%d, replace read v%d: %w", userID, kind, current, readVersion, domain.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO collections(user_id,kind,version,updated_at)
	  VALUES(?,?,?,CURRENT_TIMESTAMP)
	  ON CONFLICT(user_id,kind) DO UPDATE SET version=excluded.version, updated_at=CURRENT_TIMESTAMP
	`, userID, kind, current+1); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM collection_entries WHERE user_id=? AND kind=?`, userID, kind); err != nil {
		return err
	}
	for i, e := range entries {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO collection_entries(user_id,kind,position,product_id,qty)
		  VALUES(?,?,?,?,?)
		`, userID, kind, i, e.ProductID, e.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		// A concurrent writer holding the write lock surfaces as busy;
		// report it as a conflict so the caller's retry loop re-reads.
		if isBusy(err) {
			return fmt.Errorf("commit: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

type getter interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func (r *CollectionRepo) userExists(ctx context.Context, q getter, userID string) error {
	var one int
	err := q.GetContext(ctx, &one, `SELECT 1 FROM users WHERE id=?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return err
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
