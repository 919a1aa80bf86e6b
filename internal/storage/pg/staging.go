package pg

import (
	"context"
	"time"

	"github.com/codedrop-dev/codedrop/internal/domain"
	internal_errors "github.com/codedrop-dev/codedrop/internal/errors"

	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

const uniqueViolation = "23505"

// AppendPending stores one uploaded item in the owner's open batch and
// returns the new pending count.
func (s *Storage) AppendPending(ctx context.Context, item domain.Item) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	_, err = tx.ExecContext(ctx, `
	INSERT INTO pending_files(owner_id, kind, asset_ref, caption)
	VALUES($1, $2, $3, $4)`,
		item.OwnerID, string(item.Kind), item.AssetRef, item.Caption)
	if err != nil {
		return 0, err
	}

	var count int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pending_files WHERE owner_id = $1", item.OwnerID).Scan(&count)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// CommitPending turns the owner's open batch into a redeemable one under
// the given code, all in one transaction: the global policy is read and
// stamped onto every row, the code is reserved, the pending rows move to
// permanent storage in upload order, and the staging area is cleared.
//
// internal_errors.ErrCodeTaken when the code is already reserved, so the
// caller can regenerate. internal_errors.ErrEmptyBatch when the owner
// has nothing staged; nothing is reserved in that case.
func (s *Storage) CommitPending(ctx context.Context, ownerID int64, code string, now time.Time) (int, domain.Policy, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.Policy{}, err
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	var policy domain.Policy
	err = tx.QueryRowContext(ctx,
		"SELECT auto_delete, delete_after_hours FROM global_policy WHERE id = 1").
		Scan(&policy.AutoDelete, &policy.DeleteAfterHours)
	if err != nil {
		return 0, domain.Policy{}, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO codes(code, owner_id, committed_at) VALUES($1, $2, $3)",
		code, ownerID, now)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return 0, domain.Policy{}, internal_errors.ErrCodeTaken
		}
		return 0, domain.Policy{}, err
	}

	result, err := tx.ExecContext(ctx, `
	INSERT INTO files(code, owner_id, kind, asset_ref, caption, committed_at, auto_delete, delete_after_hours, delete_at)
	SELECT $1, owner_id, kind, asset_ref, caption, $3,
		$4, $5,
		CASE WHEN $4 THEN $3 + $5 * interval '1 hour' END
	FROM pending_files
	WHERE owner_id = $2
	ORDER BY id`,
		code, ownerID, now, policy.AutoDelete, policy.DeleteAfterHours)
	if err != nil {
		return 0, domain.Policy{}, err
	}
	moved, err := result.RowsAffected()
	if err != nil {
		return 0, domain.Policy{}, err
	}
	if moved == 0 {
		// rollback undoes the code reservation
		return 0, domain.Policy{}, internal_errors.ErrEmptyBatch
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM pending_files WHERE owner_id = $1", ownerID)
	if err != nil {
		return 0, domain.Policy{}, err
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.Policy{}, err
	}
	return int(moved), policy, nil
}

// ClearPending drops the owner's open batch. No error when it is
// already empty.
func (s *Storage) ClearPending(ctx context.Context, ownerID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pending_files WHERE owner_id = $1", ownerID)
	return err
}
