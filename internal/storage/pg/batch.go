package pg

import (
	"context"
	"time"

	"github.com/codedrop-dev/codedrop/internal/domain"
	internal_errors "github.com/codedrop-dev/codedrop/internal/errors"

	_ "github.com/lib/pq"
)

// ItemsByCode returns the batch content in upload order.
//
// internal_errors.ErrCodeNotFound when the code matches nothing.
func (s *Storage) ItemsByCode(ctx context.Context, code string) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT kind, asset_ref, caption, owner_id, committed_at
	FROM files
	WHERE code = $1
	ORDER BY id`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		var kind string
		err = rows.Scan(&kind, &item.AssetRef, &item.Caption, &item.OwnerID, &item.CreatedAt)
		if err != nil {
			return nil, err
		}
		item.Kind = domain.Kind(kind)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, internal_errors.ErrCodeNotFound
	}
	return items, nil
}

// BatchSummaries returns the owner's most recent batches, newest first,
// one row per code with the first item's kind and caption as preview.
func (s *Storage) BatchSummaries(ctx context.Context, ownerID int64, limit int) ([]domain.BatchSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT
		code,
		(array_agg(caption ORDER BY id))[1],
		(array_agg(kind ORDER BY id))[1],
		COUNT(*),
		bool_or(auto_delete),
		MAX(delete_after_hours),
		MAX(committed_at)
	FROM files
	WHERE owner_id = $1
	GROUP BY code
	ORDER BY MAX(committed_at) DESC
	LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.BatchSummary
	for rows.Next() {
		var sum domain.BatchSummary
		var kind string
		err = rows.Scan(&sum.Code, &sum.Caption, &kind, &sum.ItemCount,
			&sum.Policy.AutoDelete, &sum.Policy.DeleteAfterHours, &sum.CommittedAt)
		if err != nil {
			return nil, err
		}
		sum.Kind = domain.Kind(kind)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// DeleteBatch removes the batch and its code reservation, owner-scoped.
//
// internal_errors.ErrCodeNotFound when code+owner match nothing.
func (s *Storage) DeleteBatch(ctx context.Context, ownerID int64, code string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	result, err := tx.ExecContext(ctx,
		"DELETE FROM codes WHERE code = $1 AND owner_id = $2", code, ownerID)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return internal_errors.ErrCodeNotFound
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM files WHERE code = $1", code)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// OwnerHasCode reports whether the owner committed the batch.
func (s *Storage) OwnerHasCode(ctx context.Context, ownerID int64, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM codes WHERE code = $1 AND owner_id = $2)",
		code, ownerID).Scan(&exists)
	return exists, err
}

// DeleteExpired removes every row whose auto-delete is on and whose
// expiry has passed. Rows committed before an absolute expiry was
// stamped fall back to committed_at + TTL. Orphaned code reservations
// are dropped in the same transaction.
func (s *Storage) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	result, err := tx.ExecContext(ctx, `
	DELETE FROM files
	WHERE auto_delete
	AND (
		delete_at <= $1
		OR (delete_at IS NULL AND committed_at + delete_after_hours * interval '1 hour' <= $1)
	)`, now)
	if err != nil {
		return 0, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
	DELETE FROM codes c
	WHERE NOT EXISTS (SELECT 1 FROM files f WHERE f.code = c.code)`)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

// Stats returns the service-wide counters.
func (s *Storage) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.QueryRowContext(ctx, `
	SELECT
		(SELECT COUNT(*) FROM files),
		(SELECT COUNT(*) FROM codes),
		(SELECT COUNT(*) FROM recipients)`).
		Scan(&stats.TotalItems, &stats.TotalBatches, &stats.TotalRecipients)
	return stats, err
}
